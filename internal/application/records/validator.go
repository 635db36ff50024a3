package records

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/millbooks/millbooks-api/internal/application/dto"
	"github.com/millbooks/millbooks-api/internal/domain"
)

// Validator checks record payloads with one set of rules driven by the kind
// configuration, instead of per-kind schema declarations.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the shared validator.
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateCreate checks a create payload against the kind's configuration.
// Returns domain.ErrValidation wrapped with the offending detail.
func (val *Validator) ValidateCreate(cfg KindConfig, req dto.CreateRecordRequest) error {
	if err := val.v.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	if _, err := time.Parse(dto.DateLayout, req.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}
	if req.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
	}
	if req.Rate.IsNegative() {
		return fmt.Errorf("%w: rate must not be negative", domain.ErrValidation)
	}
	if cfg.CommodityFromPayload() && req.Commodity == "" {
		return fmt.Errorf("%w: commodity is required for %s", domain.ErrValidation, cfg.Kind)
	}
	if !cfg.CommodityFromPayload() && req.Commodity != "" && req.Commodity != cfg.Commodity {
		return fmt.Errorf("%w: commodity is fixed to %s for %s", domain.ErrValidation, cfg.Commodity, cfg.Kind)
	}
	if !cfg.HasVariety && req.Variety != "" {
		return fmt.Errorf("%w: %s records carry no variety", domain.ErrValidation, cfg.Kind)
	}
	return nil
}

// ValidateUpdate checks a partial update against the kind's configuration.
func (val *Validator) ValidateUpdate(cfg KindConfig, req dto.UpdateRecordRequest) error {
	if err := val.v.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	if req.Date != nil {
		if _, err := time.Parse(dto.DateLayout, *req.Date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
		}
	}
	if req.Quantity != nil && req.Quantity.IsNegative() {
		return fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
	}
	if req.Rate != nil && req.Rate.IsNegative() {
		return fmt.Errorf("%w: rate must not be negative", domain.ErrValidation)
	}
	if req.Variety != nil && *req.Variety != "" && !cfg.HasVariety {
		return fmt.Errorf("%w: %s records carry no variety", domain.ErrValidation, cfg.Kind)
	}
	return nil
}
