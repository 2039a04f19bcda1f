package config

import (
	"context"

	"github.com/go-playground/validator/v10"
)

var (
	// Global dependencies shared across the application
	Validate = validator.New()
	Ctx      = context.Background()
)
