// Package domain contains the persisted entities used by the application.
// These types describe saved domain contents and are intentionally free of
// infrastructure concerns so they can be shared across packages.
package domain
