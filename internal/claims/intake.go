package claims

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/warrantydesk/warrantydesk/internal/database"
	"github.com/warrantydesk/warrantydesk/internal/utils"
	"github.com/warrantydesk/warrantydesk/internal/validation"
)

// ClaimHeader is the customer and order data shared by every item of a submission
type ClaimHeader struct {
	OrderID       string     `json:"order_id" validate:"required,max=64"`
	CustomerName  string     `json:"customer_name" validate:"max=255"`
	CustomerEmail string     `json:"customer_email" validate:"required,email,max=255"`
	CustomerPhone string     `json:"customer_phone" validate:"max=32"`
	DeliveryDate  *time.Time `json:"delivery_date,omitempty"`
}

// MediaInput references an already uploaded file for one item
type MediaInput struct {
	StorageKey  string `json:"storage_key" validate:"required,max=512"`
	ContentType string `json:"content_type" validate:"max=128"`
}

// ItemInput is one line item of a submission
type ItemInput struct {
	SKU         string       `json:"sku" validate:"required,max=64"`
	ProductName string       `json:"product_name" validate:"max=255"`
	ProductType string       `json:"product_type" validate:"max=128"`
	CategoryID  uint         `json:"category_id" validate:"required"`
	Description string       `json:"description"`
	ClaimNumber string       `json:"claim_number" validate:"max=64"`
	Media       []MediaInput `json:"media" validate:"dive"`
}

// IntakeResult lists the claims created by one submission, in item order
type IntakeResult struct {
	ClaimIDs []uint
	Claims   []database.Claim
	Routing  []RouteOutcome
}

// Intake turns a customer submission into one claim per line item
type Intake struct {
	store      Store
	categories CategoryDirectory
	router     *Router
	clock      Clock
	validate   *validator.Validate
	newNumber  func() string
}

// NewIntake creates the intake service. router may be nil to skip approval
// routing; clock may be nil for the system clock.
func NewIntake(store Store, categories CategoryDirectory, router *Router, clock Clock) *Intake {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Intake{
		store:      store,
		categories: categories,
		router:     router,
		clock:      clock,
		validate:   validation.New(),
		newNumber:  GenerateClaimNumber,
	}
}

// SetClaimNumberGenerator replaces the generator used for items without a
// pre-assigned claim number
func (in *Intake) SetClaimNumberGenerator(fn func() string) {
	in.newNumber = fn
}

// GenerateClaimNumber returns a human-readable claim number like CLAIM-1A2B3C4D
func GenerateClaimNumber() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "CLAIM-" + strings.ToUpper(id[:8])
}

// SubmitClaim validates the submission, inserts every claim in a single
// transaction and, once committed, routes each claim for approval.
// Either all claims of the submission are stored or none are.
func (in *Intake) SubmitClaim(ctx context.Context, header ClaimHeader, items []ItemInput, actor Actor) (*IntakeResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	normalizeHeader(&header)
	items = append([]ItemInput(nil), items...)
	for i := range items {
		normalizeItem(&items[i])
	}

	if err := in.validateSubmission(ctx, header, items); err != nil {
		return nil, err
	}

	now := in.clock.Now()
	created := make([]database.Claim, 0, len(items))

	err := in.store.WithTransaction(ctx, func(tx Store) error {
		for i, input := range items {
			number := input.ClaimNumber
			if number == "" {
				number = in.newNumber()
			}
			assignee := actor.UserID
			claim := &database.Claim{
				OrderID:       header.OrderID,
				ClaimNumber:   number,
				CustomerName:  header.CustomerName,
				CustomerEmail: header.CustomerEmail,
				CustomerPhone: header.CustomerPhone,
				DeliveryDate:  header.DeliveryDate,
				CategoryID:    input.CategoryID,
				Status:        database.ClaimStatusNew,
				CreatedBy:     actor.UserID,
				AssignedTo:    &assignee,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.InsertClaim(ctx, claim); err != nil {
				return &IntakeError{Item: i, SKU: input.SKU, Err: persistenceError("insert claim", err)}
			}

			item := database.ClaimItem{
				ClaimID:     claim.ID,
				SKU:         input.SKU,
				ProductName: input.ProductName,
				ProductType: input.ProductType,
				Description: input.Description,
				CategoryID:  input.CategoryID,
				CreatedAt:   now,
			}
			if err := tx.InsertItem(ctx, &item); err != nil {
				return &IntakeError{Item: i, SKU: input.SKU, Err: persistenceError("insert item", err)}
			}

			for _, m := range input.Media {
				media := database.ClaimMedia{
					ClaimID:     claim.ID,
					ItemID:      item.ID,
					StorageKey:  m.StorageKey,
					ContentType: m.ContentType,
					CreatedAt:   now,
				}
				if err := tx.InsertMedia(ctx, &media); err != nil {
					return &IntakeError{Item: i, SKU: input.SKU, Err: persistenceError("insert media", err)}
				}
				claim.Media = append(claim.Media, media)
			}

			claim.Items = []database.ClaimItem{item}
			created = append(created, *claim)
		}
		return nil
	})
	if err != nil {
		var intakeErr *IntakeError
		if errors.As(err, &intakeErr) {
			return nil, intakeErr
		}
		return nil, fmt.Errorf("claim intake: %w", classifyStoreError(err))
	}

	result := &IntakeResult{
		ClaimIDs: make([]uint, 0, len(created)),
		Claims:   created,
	}
	for _, c := range created {
		result.ClaimIDs = append(result.ClaimIDs, c.ID)
	}
	log.Printf("Intake: order %s: created %d claim(s) %v by user %d", header.OrderID, len(created), result.ClaimIDs, actor.UserID)

	if in.router != nil {
		for i := range created {
			outcome := in.router.RouteForApproval(ctx, &created[i], created[i].Items)
			result.Routing = append(result.Routing, outcome)
		}
	}
	return result, nil
}

// validateSubmission checks every field and category reference before any
// write, collecting all failures
func (in *Intake) validateSubmission(ctx context.Context, header ClaimHeader, items []ItemInput) error {
	var errs ValidationErrors

	errs = append(errs, in.structErrors(header, HeaderItem)...)
	if len(items) == 0 {
		errs = append(errs, ValidationError{Item: HeaderItem, Field: "items", Message: "must contain at least one item"})
	}

	numbers := make(map[string]int)
	checked := make(map[uint]bool)
	for i, item := range items {
		errs = append(errs, in.structErrors(item, i)...)
		for j, m := range item.Media {
			if m.StorageKey == "" {
				continue
			}
			if err := utils.ValidateStorageKey(m.StorageKey); err != nil {
				errs = append(errs, ValidationError{Item: i, Field: fmt.Sprintf("media[%d].storage_key", j), Message: err.Error()})
			}
		}

		if item.ClaimNumber != "" {
			if first, dup := numbers[item.ClaimNumber]; dup {
				errs = append(errs, ValidationError{Item: i, Field: "claim_number", Message: fmt.Sprintf("duplicates item %d", first)})
			} else {
				numbers[item.ClaimNumber] = i
			}
		}

		if item.CategoryID == 0 {
			continue
		}
		if checked[item.CategoryID] {
			continue
		}
		_, err := in.categories.GetCategory(ctx, item.CategoryID)
		if errors.Is(err, ErrNotFound) {
			errs = append(errs, ValidationError{Item: i, Field: "category_id", Message: "references an unknown category"})
			continue
		}
		if err != nil {
			return &IntakeError{Item: i, SKU: item.SKU, Err: persistenceError("get category", err)}
		}
		checked[item.CategoryID] = true
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (in *Intake) structErrors(s interface{}, item int) ValidationErrors {
	err := in.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Item: item, Message: err.Error()}}
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Item: item, Field: validation.FieldPath(fe), Message: validation.Message(fe)})
	}
	return out
}

func normalizeHeader(h *ClaimHeader) {
	h.OrderID = strings.TrimSpace(h.OrderID)
	h.CustomerName = strings.TrimSpace(h.CustomerName)
	h.CustomerEmail = strings.TrimSpace(h.CustomerEmail)
	h.CustomerPhone = strings.TrimSpace(h.CustomerPhone)
}

func normalizeItem(it *ItemInput) {
	it.SKU = strings.TrimSpace(it.SKU)
	it.ProductName = strings.TrimSpace(it.ProductName)
	it.ProductType = strings.TrimSpace(it.ProductType)
	it.Description = strings.TrimSpace(it.Description)
	it.ClaimNumber = strings.TrimSpace(it.ClaimNumber)
}
