package httphandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/waitlist/internal/application/appcore"
	waitlistapp "github.com/lllypuk/waitlist/internal/application/waitlist"
	"github.com/lllypuk/waitlist/internal/infrastructure/httpserver"
	"github.com/lllypuk/waitlist/internal/middleware"
)

// WaitlistService defines the waitlist operations used by the handler.
// Declared on the consumer side.
type WaitlistService interface {
	// Register creates the caller's entry.
	Register(ctx context.Context, cmd waitlistapp.RegisterCommand) (waitlistapp.Result, error)

	// GetEntry returns the caller's own entry.
	GetEntry(ctx context.Context, query waitlistapp.GetEntryQuery) (waitlistapp.Result, error)

	// GetProfile assembles the caller's profile.
	GetProfile(ctx context.Context, query waitlistapp.GetProfileQuery) (waitlistapp.ProfileResult, error)

	// ListEntries lists every entry, newest first.
	ListEntries(ctx context.Context, query waitlistapp.ListEntriesQuery) (waitlistapp.EntriesListResult, error)
}

// WaitlistHandler handles waitlist and profile HTTP requests.
type WaitlistHandler struct {
	service            WaitlistService
	registerMiddleware []echo.MiddlewareFunc
}

// WaitlistHandlerOption configures the WaitlistHandler.
type WaitlistHandlerOption func(*WaitlistHandler)

// WithRegisterMiddleware adds middleware in front of POST /waitlist only,
// e.g. a per-endpoint rate limit.
func WithRegisterMiddleware(m ...echo.MiddlewareFunc) WaitlistHandlerOption {
	return func(h *WaitlistHandler) {
		h.registerMiddleware = append(h.registerMiddleware, m...)
	}
}

// NewWaitlistHandler creates a new WaitlistHandler.
func NewWaitlistHandler(service WaitlistService, opts ...WaitlistHandlerOption) *WaitlistHandler {
	h := &WaitlistHandler{service: service}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers waitlist routes with the router.
func (h *WaitlistHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().POST("/waitlist", h.Register, h.registerMiddleware...)
	r.Auth().GET("/waitlist/user", h.GetMine)
	r.Auth().GET("/profile", h.GetProfile)

	r.Admin().GET("/waitlist", h.List)
}

// Register handles POST /api/waitlist.
func (h *WaitlistHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := decodeStrict(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.service.Register(c.Request().Context(), waitlistapp.RegisterCommand{
		Identity:   middleware.GetIdentity(c),
		Submission: req.submission(),
	})
	if err != nil {
		return respondError(c, err)
	}

	return httpserver.RespondCreated(c, ToEntryResponse(result.Value))
}

// GetMine handles GET /api/waitlist/user.
func (h *WaitlistHandler) GetMine(c echo.Context) error {
	result, err := h.service.GetEntry(c.Request().Context(), waitlistapp.GetEntryQuery{
		Identity: middleware.GetIdentity(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	return httpserver.RespondOK(c, ToEntryResponse(result.Value))
}

// GetProfile handles GET /api/profile.
// A caller without an entry gets 200 with status "absent".
func (h *WaitlistHandler) GetProfile(c echo.Context) error {
	result, err := h.service.GetProfile(c.Request().Context(), waitlistapp.GetProfileQuery{
		Identity: middleware.GetIdentity(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	return httpserver.RespondOK(c, toProfileResponse(result))
}

// List handles GET /api/admin/waitlist.
func (h *WaitlistHandler) List(c echo.Context) error {
	result, err := h.service.ListEntries(c.Request().Context(), waitlistapp.ListEntriesQuery{
		Identity: middleware.GetIdentity(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	resp := EntryListResponse{
		Entries:    make([]EntryResponse, 0, len(result.Entries)),
		TotalCount: result.TotalCount,
	}
	for _, e := range result.Entries {
		resp.Entries = append(resp.Entries, ToEntryResponse(e))
	}
	return httpserver.RespondOK(c, resp)
}

// decodeStrict decodes a single JSON object into dst. Keys must match the
// json tags of dst exactly and appear once; encoding/json alone would accept
// "NAME" for "name" and let a repeated key silently win. Decoding problems
// are reported as validation errors; an exceeded body limit is passed
// through as echo's 413.
func decodeStrict(c echo.Context, dst any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return appcore.CollectValidation(appcore.NewValidationError("body", "could not be read"))
	}

	if keyErr := checkObjectKeys(body, jsonFieldNames(dst)); keyErr != nil {
		return keyErr
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	err = dec.Decode(dst)
	if err == nil {
		if dec.More() {
			return appcore.CollectValidation(
				appcore.NewValidationError("body", "must contain a single JSON object"))
		}
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return appcore.CollectValidation(appcore.NewValidationError("body", "is required"))
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return appcore.CollectValidation(
			appcore.NewValidationError(field, "has the wrong type, expected "+typeErr.Type.String()))
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return appcore.CollectValidation(appcore.NewValidationError(field, "is not allowed"))
	default:
		return appcore.CollectValidation(appcore.NewValidationError("body", "must be valid JSON"))
	}
}

// checkObjectKeys walks the top-level keys of a JSON object and reports keys
// outside allowed and keys given more than once. Anything that is not a
// well-formed object is left to the full decode.
func checkObjectKeys(body []byte, allowed map[string]struct{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	seen := make(map[string]struct{})
	var checks []error
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil
		}

		_, known := allowed[key]
		if _, dup := seen[key]; dup {
			if known {
				checks = append(checks, appcore.NewValidationError(key, "must not be repeated"))
			}
		} else if !known {
			checks = append(checks, appcore.NewValidationError(key, "is not allowed"))
		}
		seen[key] = struct{}{}

		var skip json.RawMessage
		if err = dec.Decode(&skip); err != nil {
			return nil
		}
	}
	return appcore.CollectValidation(checks...)
}

// jsonFieldNames returns the exact json names of the struct dst points to.
func jsonFieldNames(dst any) map[string]struct{} {
	names := make(map[string]struct{})
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return names
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = struct{}{}
	}
	return names
}
