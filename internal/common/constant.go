// Package common contains shared constants and sentinel errors used across
// the profilevault services.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token between
// the boundary service and the document service.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the token inside the Authorization header.
const BearerScheme = "Bearer"

// AccessTokenType is the type discriminator embedded in every access token.
const AccessTokenType = "access"

// PDFContentType is the media type of rendered profile artifacts.
const PDFContentType = "application/pdf"
