// File: codec/params.go
// Author: momentics <momentics@gmail.com>
//
// Parameter extraction helpers, the concrete form of §9's "keyword-
// argument dispatch": the wire carries params as a map[string]any, and a
// registered method extracts the keys it needs. mapstructure does the
// extraction/type-coercion a handwritten per-field switch would otherwise
// repeat for every method.

package codec

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/nunoatgithub/shm-rpc-bridge/api"
)

var paramsValidator = validator.New()

// DecodeParams decodes a request's params map into out, a pointer to a
// struct tagged with `mapstructure:"..."` (and optionally `validate:"..."`
// for required-ness). mapstructure alone never complains about an absent
// key, it just leaves the zero value, so a `validate:"required"` pass
// afterward is what actually catches "key is missing"; a value that
// cannot be coerced to the target field's type fails during decode
// itself. Either failure is reported as Protocol, per §9 ("returns a
// Protocol-kind failure if a key is missing or ill-typed").
func DecodeParams(params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      false,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return api.Wrap(api.KindProtocol, "build params decoder", err)
	}
	if err := decoder.Decode(params); err != nil {
		return api.Wrap(api.KindProtocol, fmt.Sprintf("decode params: %v", err), err)
	}
	if err := paramsValidator.Struct(out); err != nil {
		return api.Wrap(api.KindProtocol, fmt.Sprintf("missing or invalid params: %v", err), err)
	}
	return nil
}
