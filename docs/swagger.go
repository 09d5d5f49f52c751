// Package docs provides the Swagger documentation for the API.
package docs

// @title           Content Dashboard API
// @version         1.0
// @description     Content feed, favorites, accounts, settings and client log ingestion for the content dashboard.

// @contact.name   API Support
// @contact.url    https://github.com/aashari/go-content-dashboard

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey UserEmail
// @in header
// @name X-User-Email
// @description Identity of the signed-in user, set by the authentication proxy.
