package stage

import (
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestErrorUnused(t *testing.T) {
	for _, f := range []bool{true, false} {
		var dc mapstructure.DecoderConfig
		ErrorUnused(f)(&dc)
		assert.Equal(t, f, dc.ErrorUnused)
	}
}

func TestExact(t *testing.T) {
	var dc mapstructure.DecoderConfig
	Exact(&dc)
	assert.True(t, dc.ErrorUnused)
}

func TestWeaklyTypedInput(t *testing.T) {
	for _, f := range []bool{true, false} {
		var dc mapstructure.DecoderConfig
		WeaklyTypedInput(f)(&dc)
		assert.Equal(t, f, dc.WeaklyTypedInput)
	}
}

func TestTagName(t *testing.T) {
	var dc mapstructure.DecoderConfig
	TagName("config")(&dc)
	assert.Equal(t, "config", dc.TagName)
}

func TestSquash(t *testing.T) {
	var dc mapstructure.DecoderConfig
	Squash(true)(&dc)
	assert.True(t, dc.Squash)
}

func TestMerge(t *testing.T) {
	var (
		assert = assert.New(t)
		dc     mapstructure.DecoderConfig
	)

	Merge(
		[]viper.DecoderConfigOption{ErrorUnused(true)},
		nil,
		[]viper.DecoderConfigOption{TagName("config"), Squash(true)},
	)(&dc)

	assert.True(dc.ErrorUnused)
	assert.Equal("config", dc.TagName)
	assert.True(dc.Squash)
}
