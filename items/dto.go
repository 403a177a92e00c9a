package items

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/michaelk046/ComicManager/apperror"
)

// CreateRequest is the JSON payload for POST /items. Publisher and grade are
// free text; they are resolved to foreign keys during the write.
type CreateRequest struct {
	Title         string   `json:"title" example:"Amazing Spider-Man"`
	IssueNumber   string   `json:"issue_number" example:"1"`
	Publisher     *string  `json:"publisher,omitempty" example:"Marvel"`
	Grade         *string  `json:"grade,omitempty" example:"NM"`
	CoverImageURL *string  `json:"cover_image_url,omitempty"`
	BuyPrice      *float64 `json:"buy_price,omitempty"`
	CurrentValue  *float64 `json:"current_value,omitempty"`
	SellPrice     *float64 `json:"sell_price,omitempty"`
}

func (r CreateRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apperror.NewValidationError("title is required", nil)
	}
	if strings.TrimSpace(r.IssueNumber) == "" {
		return apperror.NewValidationError("issue_number is required", nil)
	}
	for name, price := range map[string]*float64{
		"buy_price":     r.BuyPrice,
		"current_value": r.CurrentValue,
		"sell_price":    r.SellPrice,
	} {
		if price != nil && *price < 0 {
			return apperror.NewValidationError(name+" must not be negative", nil)
		}
	}
	return nil
}

// Optional is a patch field that distinguishes "omitted" from "set to null".
// A field left out of the JSON body has Set == false; an explicit null has
// Set == true and a nil Value.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON records that the field was present. encoding/json only calls
// this for keys that appear in the body, which is what makes the
// omitted-vs-null distinction work.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// UpdateRequest is the JSON payload for PATCH /items/{id}. Only fields
// present in the body are applied; explicit nulls clear nullable columns.
type UpdateRequest struct {
	Title         Optional[string]  `json:"title"`
	IssueNumber   Optional[string]  `json:"issue_number"`
	Publisher     Optional[string]  `json:"publisher"`
	Grade         Optional[string]  `json:"grade"`
	CoverImageURL Optional[string]  `json:"cover_image_url"`
	BuyPrice      Optional[float64] `json:"buy_price"`
	CurrentValue  Optional[float64] `json:"current_value"`
	SellPrice     Optional[float64] `json:"sell_price"`
}

func (r UpdateRequest) validate() error {
	// Title and issue number are required columns: they may be replaced but
	// never cleared.
	if r.Title.Set && (r.Title.Value == nil || strings.TrimSpace(*r.Title.Value) == "") {
		return apperror.NewValidationError("title must not be blank", nil)
	}
	if r.IssueNumber.Set && (r.IssueNumber.Value == nil || strings.TrimSpace(*r.IssueNumber.Value) == "") {
		return apperror.NewValidationError("issue_number must not be blank", nil)
	}
	for name, price := range map[string]Optional[float64]{
		"buy_price":     r.BuyPrice,
		"current_value": r.CurrentValue,
		"sell_price":    r.SellPrice,
	} {
		if price.Set && price.Value != nil && *price.Value < 0 {
			return apperror.NewValidationError(name+" must not be negative", nil)
		}
	}
	return nil
}
