// Package users registers the OpenAPI document for the credential service.
//
// Regenerate with: swag init -g internal/users/http/router.go -o api/users --outputTypes go
package users

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/register": {
            "post": {
                "tags": ["Accounts"],
                "summary": "Register an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Username and password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/userssdk.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/userssdk.RegisterResponse"}},
                    "400": {"description": "Malformed request", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "409": {"description": "Account already exists", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/v1/login": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/userssdk.LoginRequest"}},
                    {"type": "string", "description": "Token audience", "name": "X-Auth-Audience", "in": "header"},
                    {"type": "string", "description": "TOTP or recovery code", "name": "X-Auth-TOTP", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.LoginResponse"}},
                    "400": {"description": "Malformed request", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "401": {"description": "Incorrect username or password", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "403": {"description": "TOTP required or invalid", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/v1/verify": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Verify a token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Token", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/userssdk.VerifyRequest"}},
                    {"type": "string", "description": "Expected audience", "name": "X-Auth-Audience", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.VerifyResponse"}},
                    "403": {"description": "Token has expired or was forged", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/v1/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Sessions"],
                "summary": "Log out",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Token", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/userssdk.LogoutRequest"}},
                    {"type": "string", "description": "Token audience", "name": "X-Auth-Audience", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.SuccessResponse"}},
                    "403": {"description": "Token has expired or was forged", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/v1/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Accounts"],
                "summary": "Current account",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.ProfileResponse"}},
                    "403": {"description": "Token has expired or was forged", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Accounts"],
                "summary": "Delete account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Password confirmation", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/userssdk.DeleteAccountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.SuccessResponse"}},
                    "401": {"description": "Password incorrect", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/v1/me/password": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Accounts"],
                "summary": "Change password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Current and new password", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/userssdk.ChangePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.SuccessResponse"}},
                    "400": {"description": "New password rejected", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "401": {"description": "Current password incorrect", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/v1/mfa/generate-key": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["MFA"],
                "summary": "Generate a TOTP key",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Client reference time (unix ms)", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/userssdk.GenerateKeyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.GenerateKeyResponse"}},
                    "400": {"description": "Invalid reference time", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "409": {"description": "MFA already enabled", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/v1/mfa/attach": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["MFA"],
                "summary": "Attach MFA",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Secret and TOTP code", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/userssdk.AttachRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.AttachResponse"}},
                    "403": {"description": "TOTP invalid", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "409": {"description": "MFA already enabled", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/v1/mfa/verify": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["MFA"],
                "summary": "Verify a second factor",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "TOTP or recovery code", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/userssdk.TOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.VerifyMFAResponse"}},
                    "403": {"description": "TOTP invalid", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "412": {"description": "MFA disabled", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/v1/mfa/regenerate-codes": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["MFA"],
                "summary": "Regenerate recovery codes",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "TOTP code", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/userssdk.TOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.RegenerateCodesResponse"}},
                    "403": {"description": "TOTP invalid", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "412": {"description": "MFA disabled", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/v1/mfa/detach": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["MFA"],
                "summary": "Detach MFA",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "TOTP code", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/userssdk.TOTPRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/userssdk.DetachResponse"}},
                    "403": {"description": "TOTP invalid", "schema": {"$ref": "#/definitions/userssdk.APIError"}},
                    "412": {"description": "MFA disabled", "schema": {"$ref": "#/definitions/userssdk.APIError"}}
                }
            }
        },
        "/.well-known/jwks.json": {
            "get": {
                "tags": ["well-known"],
                "summary": "Get JWKS",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "The JSON Web Key Set", "schema": {"$ref": "#/definitions/userssdk.JWKSResponse"}}
                }
            }
        },
        "/livez": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/userssdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/userssdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/userssdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "userssdk.APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}},
        "userssdk.RegisterRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "userssdk.RegisterResponse": {"type": "object", "properties": {"username": {"type": "string"}}},
        "userssdk.LoginRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "totp": {"type": "string"}}},
        "userssdk.LoginResponse": {"type": "object", "properties": {"token": {"type": "string"}, "tokenType": {"type": "string"}, "username": {"type": "string"}, "audience": {"type": "string"}, "expiresAt": {"type": "string"}}},
        "userssdk.LogoutRequest": {"type": "object", "properties": {"token": {"type": "string"}}},
        "userssdk.VerifyRequest": {"type": "object", "properties": {"token": {"type": "string"}}},
        "userssdk.VerifyResponse": {"type": "object", "properties": {"username": {"type": "string"}, "audience": {"type": "string"}, "amr": {"type": "array", "items": {"type": "string"}}, "ext": {"type": "object", "additionalProperties": {"type": "string"}}, "expiresAt": {"type": "string"}}},
        "userssdk.SuccessResponse": {"type": "object", "properties": {"success": {"type": "boolean"}}},
        "userssdk.ProfileResponse": {"type": "object", "properties": {"username": {"type": "string"}, "mfaEnabled": {"type": "boolean"}}},
        "userssdk.ChangePasswordRequest": {"type": "object", "properties": {"currentPassword": {"type": "string"}, "newPassword": {"type": "string"}}},
        "userssdk.DeleteAccountRequest": {"type": "object", "properties": {"password": {"type": "string"}}},
        "userssdk.GenerateKeyRequest": {"type": "object", "properties": {"username": {"type": "string"}, "time": {"type": "string"}}},
        "userssdk.GenerateKeyResponse": {"type": "object", "properties": {"secret": {"type": "string"}, "uri": {"type": "string"}, "skew": {"type": "integer"}}},
        "userssdk.AttachRequest": {"type": "object", "properties": {"username": {"type": "string"}, "secret": {"type": "string"}, "totp": {"type": "string"}}},
        "userssdk.AttachResponse": {"type": "object", "properties": {"enabled": {"type": "boolean"}, "recoveryCodes": {"type": "array", "items": {"type": "string"}}}},
        "userssdk.TOTPRequest": {"type": "object", "properties": {"username": {"type": "string"}, "totp": {"type": "string"}}},
        "userssdk.VerifyMFAResponse": {"type": "object", "properties": {"valid": {"type": "boolean"}}},
        "userssdk.RegenerateCodesResponse": {"type": "object", "properties": {"regenerated": {"type": "boolean"}, "recoveryCodes": {"type": "array", "items": {"type": "string"}}}},
        "userssdk.DetachResponse": {"type": "object", "properties": {"enabled": {"type": "boolean"}}},
        "userssdk.HealthChecks": {"type": "object", "properties": {"store": {"type": "string"}, "signer": {"type": "string"}}},
        "userssdk.HealthResponse": {"type": "object", "properties": {"status": {"type": "string"}, "uptime": {"type": "string"}, "version": {"type": "string"}, "checks": {"$ref": "#/definitions/userssdk.HealthChecks"}}},
        "userssdk.JWK": {"type": "object", "properties": {"kty": {"type": "string"}, "kid": {"type": "string"}, "use": {"type": "string"}, "alg": {"type": "string"}, "crv": {"type": "string"}, "x": {"type": "string"}, "y": {"type": "string"}, "n": {"type": "string"}, "e": {"type": "string"}}},
        "userssdk.JWKSResponse": {"type": "object", "properties": {"keys": {"type": "array", "items": {"$ref": "#/definitions/userssdk.JWK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Session token. Format: \"Bearer {token}\" or \"JWT {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "usergate Credential Service API",
	Description:      "Account registration, password login with optional TOTP second factor,\nand revocable per-audience session tokens.\n\nTokens are JWTs; verify them with /v1/verify or locally against the JWKS.\nLocal verification cannot see revocation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
