package service

// ValidatorFunc inspects an RPC request before the operation runs.
// Generalised from the teacher's validator.ValidatorFunc, which only
// validated a single input string.
type ValidatorFunc func(request any) error

// RequestValidator rejects malformed requests before they reach the
// operation handler.
type RequestValidator struct {
	validate ValidatorFunc
}

// NewRequestValidator builds a RequestValidator running validate against
// every request that passes through it.
func NewRequestValidator(validate ValidatorFunc) *RequestValidator {
	return &RequestValidator{validate: validate}
}

func (m *RequestValidator) Name() string { return "RequestValidator" }

func (m *RequestValidator) Execute(ctx *RPCContext, next Handler) error {
	if m.validate != nil {
		if err := m.validate(ctx.Request); err != nil {
			return err
		}
	}
	return next(ctx)
}
