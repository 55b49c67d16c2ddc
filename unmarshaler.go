package stage

import (
	"errors"

	"github.com/spf13/viper"
)

// ErrNilViper is returned when a nil viper instance is supplied to ForViper
var ErrNilViper = errors.New("the viper instance cannot be nil")

// Unmarshaler is the strategy for loading configuration objects, such as
// stagehttp server configuration, from an external source.
type Unmarshaler interface {
	// Unmarshal reads configuration into the given value, which is
	// expected to be a pointer
	Unmarshal(value any) error

	// UnmarshalKey reads configuration from a particular key into the
	// given value
	UnmarshalKey(key string, value any) error
}

// ViperUnmarshaler is the standard Unmarshaler implementation.  It couples
// a viper instance together with zero or more decoder options.
type ViperUnmarshaler struct {
	// Viper is the required viper instance to which all unmarshal
	// operations are delegated
	Viper *viper.Viper

	// Options is the optional slice of viper.DecoderConfigOption passed
	// to every unmarshal call
	Options []viper.DecoderConfigOption
}

// Unmarshal implements Unmarshaler
func (vu ViperUnmarshaler) Unmarshal(value any) error {
	return vu.Viper.Unmarshal(value, vu.Options...)
}

// UnmarshalKey implements Unmarshaler
func (vu ViperUnmarshaler) UnmarshalKey(key string, value any) error {
	return vu.Viper.UnmarshalKey(key, value, vu.Options...)
}

// ForViper creates an Unmarshaler backed by an externally supplied viper
// instance.  The decoder options are applied to every unmarshal operation.
func ForViper(v *viper.Viper, opts ...viper.DecoderConfigOption) (Unmarshaler, error) {
	if v == nil {
		return nil, ErrNilViper
	}

	return ViperUnmarshaler{
		Viper:   v,
		Options: opts,
	}, nil
}
