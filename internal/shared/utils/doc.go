// Package utils holds input validation helpers shared by the API layer.
package utils
