package simd

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wavesim/wavesim/internal/export"
	"github.com/wavesim/wavesim/pkg/models"
)

var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	_ = requestValidate.RegisterValidation("runid", validateRunID)
	_ = requestValidate.RegisterValidation("exportformat", validateExportFormat)
}

func validateRunID(fl validator.FieldLevel) bool {
	return !strings.ContainsAny(fl.Field().String(), "/ \t\r\n")
}

func validateExportFormat(fl validator.FieldLevel) bool {
	_, err := export.ParseFormat(fl.Field().String())
	return err == nil
}

// CompileRequest is the body of POST /v1/compile
type CompileRequest struct {
	Input map[string]any `json:"input" validate:"required"`
}

// ParametersRequest is the body of POST /v1/validate and POST /v1/optimize
type ParametersRequest struct {
	Parameters map[string]any `json:"parameters" validate:"required"`
}

// RunOptionsRequest overrides the server's run defaults field by field.
type RunOptionsRequest struct {
	Validate *bool `json:"validate,omitempty"`
	Optimize *bool `json:"optimize,omitempty"`
}

// CreateRunRequest is the body of POST /v1/runs
type CreateRunRequest struct {
	RunID          string             `json:"run_id,omitempty" validate:"omitempty,max=128,runid"`
	Input          map[string]any     `json:"input" validate:"required"`
	Options        *RunOptionsRequest `json:"options,omitempty"`
	CallbackURL    string             `json:"callback_url,omitempty" validate:"omitempty,url,startswith=http"`
	CallbackSecret string             `json:"callback_secret,omitempty" validate:"omitempty,max=256"`
}

// Resolve applies the request's option overrides to defaults.
func (o *RunOptionsRequest) Resolve(defaults models.RunOptions) models.RunOptions {
	opts := defaults
	if o == nil {
		return opts
	}
	if o.Validate != nil {
		opts.Validate = *o.Validate
	}
	if o.Optimize != nil {
		opts.Optimize = *o.Optimize
	}
	return opts
}

// ExportQuery holds the query parameters of GET /v1/runs/{id}/export
type ExportQuery struct {
	Format     string `validate:"required,exportformat"`
	SampleRate int    `validate:"omitempty,min=1000,max=192000"`
}

// StreamQuery holds the query parameters of GET /v1/runs/{id}/stream
type StreamQuery struct {
	Chunk int `validate:"min=1,max=100000"`
}

// ListQuery holds the query parameters of GET /v1/runs
type ListQuery struct {
	Limit  int    `validate:"min=1,max=1000"`
	Offset int    `validate:"min=0"`
	Status string `validate:"omitempty,oneof=pending completed declined failed"`
}
