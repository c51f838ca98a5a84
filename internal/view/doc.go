// Package view holds the server-rendered HTML components.
package view
