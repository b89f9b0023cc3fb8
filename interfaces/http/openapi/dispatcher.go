package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"go.uber.org/zap"

	"recipebook/pkg/common"
	pkgerrors "recipebook/pkg/errors"
	"recipebook/pkg/observability"
)

// Authenticator checks the credentials of a request for a security scheme
// and returns the authenticated subject
type Authenticator interface {
	Authenticate(r *http.Request, scheme string) (string, error)
}

// Dispatcher routes requests to the handler registered for the operation
// they match in the OpenAPI document
type Dispatcher struct {
	doc        *openapi3.T
	router     routers.Router
	operations map[string]struct{}

	mu       sync.RWMutex
	handlers map[string]http.Handler

	authenticator     Authenticator
	validateResponses bool
	maxBodyBytes      int64

	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithAuthenticator checks security requirements with a. Without one every
// requirement is satisfied.
func WithAuthenticator(a Authenticator) Option {
	return func(d *Dispatcher) {
		d.authenticator = a
	}
}

// WithResponseValidation buffers each response and checks it against the document
func WithResponseValidation(enabled bool) Option {
	return func(d *Dispatcher) {
		d.validateResponses = enabled
	}
}

// WithMaxBodyBytes limits request bodies
func WithMaxBodyBytes(n int64) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxBodyBytes = n
		}
	}
}

// NewDispatcher loads and validates the document and builds its route table
func NewDispatcher(ctx context.Context, spec []byte, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger, opts ...Option) (*Dispatcher, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI router: %w", err)
	}

	operations := make(map[string]struct{})
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			if op.OperationID == "" {
				return nil, fmt.Errorf("operation %s %s has no operationId", method, path)
			}
			if _, dup := operations[op.OperationID]; dup {
				return nil, fmt.Errorf("duplicate operationId %q", op.OperationID)
			}
			operations[op.OperationID] = struct{}{}
		}
	}

	d := &Dispatcher{
		doc:          doc,
		router:       router,
		operations:   operations,
		handlers:     make(map[string]http.Handler),
		maxBodyBytes: common.DefaultMaxBodyBytes,
		errors:       errHandler,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Register binds a handler to an operation id declared in the document
func (d *Dispatcher) Register(operationID string, handler http.Handler) error {
	if _, ok := d.operations[operationID]; !ok {
		return fmt.Errorf("unknown operationId %q", operationID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[operationID]; exists {
		return fmt.Errorf("handler already registered for operationId %q", operationID)
	}
	d.handlers[operationID] = handler
	return nil
}

// RegisterFunc is Register for plain functions
func (d *Dispatcher) RegisterFunc(operationID string, handler http.HandlerFunc) error {
	return d.Register(operationID, handler)
}

// Operations returns every operation id in the document, sorted
func (d *Dispatcher) Operations() []string {
	ids := make([]string, 0, len(d.operations))
	for id := range d.operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Verify reports the operations that have no handler
func (d *Dispatcher) Verify() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var missing []string
	for _, id := range d.Operations() {
		if _, ok := d.handlers[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no handler registered for operations: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ServeHTTP matches the request to an operation, validates it and calls the handler
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route, pathParams, err := d.router.FindRoute(r)
	switch {
	case errors.Is(err, routers.ErrMethodNotAllowed):
		d.errors.Handle(w, r, pkgerrors.NewMethodNotAllowedError(r.Method, r.URL.Path))
		return
	case err != nil:
		d.errors.Handle(w, r, pkgerrors.NewNotFoundError("route "+r.URL.Path))
		return
	}

	operationID := route.Operation.OperationID
	observability.SetRouteLabel(r.Context(), operationID)

	d.mu.RLock()
	handler, ok := d.handlers[operationID]
	d.mu.RUnlock()
	if !ok {
		d.errors.Handle(w, r, pkgerrors.NewNotImplementedError(operationID))
		return
	}

	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, d.maxBodyBytes)
	}

	var subject string
	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: d.authenticate(&subject),
		},
	}
	if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
		d.errors.Handle(w, r, requestValidationError(err))
		return
	}

	ctx := common.WithOperationID(r.Context(), operationID)
	ctx = common.WithPathParams(ctx, pathParams)
	if subject != "" {
		ctx = common.WithSubject(ctx, subject)
	}
	r = r.WithContext(ctx)

	if !d.validateResponses {
		handler.ServeHTTP(w, r)
		return
	}

	buf := newBufferedResponse()
	handler.ServeHTTP(buf, r)

	responseInput := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: input,
		Status:                 buf.status,
		Header:                 buf.header,
		Options:                &openapi3filter.Options{IncludeResponseStatus: true},
	}
	responseInput.SetBodyBytes(buf.body.Bytes())

	if err := openapi3filter.ValidateResponse(ctx, responseInput); err != nil {
		d.logger.Error("Response does not match the API document",
			zap.String("operationId", operationID),
			zap.Int("status", buf.status),
			zap.Error(err),
		)
		d.errors.Handle(w, r, pkgerrors.NewInternalError("response failed validation").WithCode("INVALID_RESPONSE").WithCause(err))
		return
	}

	buf.flushTo(w)
}

func (d *Dispatcher) authenticate(subject *string) openapi3filter.AuthenticationFunc {
	return func(ctx context.Context, input *openapi3filter.AuthenticationInput) error {
		if d.authenticator == nil {
			return nil
		}
		sub, err := d.authenticator.Authenticate(input.RequestValidationInput.Request, input.SecuritySchemeName)
		if err != nil {
			return err
		}
		*subject = sub
		return nil
	}
}

// requestValidationError converts a kin-openapi validation failure into an API error
func requestValidationError(err error) error {
	var secErr *openapi3filter.SecurityRequirementsError
	if errors.As(err, &secErr) {
		message := "authentication required"
		for _, e := range secErr.Errors {
			if appErr := pkgerrors.GetAppError(e); appErr != nil {
				message = appErr.Message
				break
			}
		}
		return pkgerrors.NewUnauthorizedError(message)
	}

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		appErr := pkgerrors.NewValidationError(reqErr.Error()).WithCode("INVALID_REQUEST")
		switch {
		case reqErr.Parameter != nil:
			appErr.WithDetail("parameter", reqErr.Parameter.Name)
			appErr.WithDetail("in", reqErr.Parameter.In)
		case reqErr.RequestBody != nil:
			appErr.WithDetail("in", "body")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			appErr.Message = fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
		}
		return appErr
	}

	return pkgerrors.NewValidationError(err.Error()).WithCode("INVALID_REQUEST")
}

// bufferedResponse holds a response until it has been validated
type bufferedResponse struct {
	header      http.Header
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wroteHeader = true
	return b.body.Write(p)
}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = v
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
