package nav

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPRequirementValidator checks a NavigateTo/PopUpTo destination's
// Requirements against an external authorization service over HTTP.
//
// Requests are POSTed as JSON {"tags": [...]} to Endpoint, carrying
// whatever bearer token TokenSource supplies; responses are decoded as
// JSON {"satisfied": [...]}. Any requirement tag on the node not present
// in the response's satisfied set is treated as unmet.
type HTTPRequirementValidator struct {
	Prio          int
	Client        *http.Client
	Endpoint      string
	TokenSource   func(ctx context.Context) (string, error)
	FallbackRoute RouteKey
	FallbackPrio  int
}

// NewHTTPRequirementValidator constructs a validator that POSTs to
// endpoint to resolve requirement satisfaction. A zero-value http.Client
// is used if client is nil; callers needing a request timeout should
// derive it from ctx rather than configuring one on the client itself.
func NewHTTPRequirementValidator(prio int, client *http.Client, endpoint string) *HTTPRequirementValidator {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPRequirementValidator{Prio: prio, Client: client, Endpoint: endpoint}
}

// Priority implements Validator.
func (h *HTTPRequirementValidator) Priority() int { return h.Prio }

type requirementRequest struct {
	Tags []string `json:"tags"`
}

type requirementResponse struct {
	Satisfied []string `json:"satisfied"`
}

// Validate implements Validator. Nodes without requirements, and intents
// other than NavigateTo/PopUpTo, are always Valid without a network
// call. A request failure or non-2xx response is treated as Invalid
// rather than panicking the dispatch loop; the composite validator's
// caller already recovers panics, but a validator author should not need
// to rely on that for ordinary network errors.
func (h *HTTPRequirementValidator) Validate(ctx context.Context, intent Intent, node *Node) ValidationResult {
	if node == nil || len(node.Requirements) == 0 {
		return Valid()
	}
	if intent.Kind != IntentNavigateTo && intent.Kind != IntentPopUpTo {
		return Valid()
	}

	tags := make([]string, 0, len(node.Requirements))
	for tag := range node.Requirements {
		tags = append(tags, tag)
	}

	satisfied, err := h.fetchSatisfied(ctx, tags)
	if err != nil {
		return Invalid(fmt.Sprintf("requirement check failed: %v", err))
	}

	for tag := range node.Requirements {
		if _, ok := satisfied[tag]; ok {
			continue
		}
		if h.FallbackRoute == "" {
			return Invalid(fmt.Sprintf("missing requirement %q for route %q", tag, node.RouteKey))
		}
		return Redirect(intent, NavigateTo(
			NewRoute(h.FallbackRoute),
			NavOptions{SingleTop: true, AddToBackStack: true},
			SenderSystem,
			h.FallbackPrio,
		))
	}
	return Valid()
}

func (h *HTTPRequirementValidator) fetchSatisfied(ctx context.Context, tags []string) (map[string]struct{}, error) {
	payload, err := json.Marshal(requirementRequest{Tags: tags})
	if err != nil {
		return nil, fmt.Errorf("failed to encode requirement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create requirement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.TokenSource != nil {
		token, err := h.TokenSource(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute requirement request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		return nil, fmt.Errorf("requirement service returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded requirementResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode requirement response: %w", err)
	}

	satisfied := make(map[string]struct{}, len(decoded.Satisfied))
	for _, tag := range decoded.Satisfied {
		satisfied[tag] = struct{}{}
	}
	return satisfied, nil
}
