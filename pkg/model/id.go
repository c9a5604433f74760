package model

import (
	"github.com/google/uuid"
	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// cellIDAlphabet matches the characters drawio uses in generated ids.
	cellIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_"
	cellIDLength   = 20
)

// NewCellID returns a random cell id.
func NewCellID() string {
	return nanoid.MustGenerate(cellIDAlphabet, cellIDLength)
}

// NewPageID returns a random page id.
func NewPageID() string {
	return uuid.NewString()
}
