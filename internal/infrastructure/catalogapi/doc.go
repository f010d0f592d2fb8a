// Package catalogapi is the HTTP client for the inventory module's catalog
// endpoints.
//
// Reads are plain GETs and may be retried. Mutations carry the Django
// anti-forgery token in X-CSRFToken and are sent exactly once. Server replies
// use the {success, message} envelope; a rejected envelope becomes a
// VALIDATION_ERROR carrying the server message unchanged, anything else that
// goes wrong on the wire becomes a NETWORK_ERROR.
package catalogapi
