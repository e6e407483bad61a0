// Package testutil contains helper builders and fixtures used across tests
// to reduce boilerplate when constructing stores, requests and engines.
// They are not intended for production usage.
package testutil
