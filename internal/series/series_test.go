package series

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterval(t *testing.T) {
	iv, err := NewInterval(100, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(100), iv.Duration())

	_, err = NewInterval(200, 100)
	assert.Error(t, err)

	_, err = NewInterval(100, 100)
	assert.Error(t, err)
}

func TestIntervalEquality(t *testing.T) {
	assert.True(t, Interval{1, 2}.Equal(Interval{1, 2}))
	assert.False(t, Interval{1, 2}.Equal(Interval{1, 3}))
}

func TestSampleJSON(t *testing.T) {
	var samples []Sample
	err := json.Unmarshal([]byte(`[1.5, null, -3]`), &samples)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, Number(1.5), samples[0])
	assert.Equal(t, Null(), samples[1])
	assert.Equal(t, Number(-3), samples[2])

	out, err := json.Marshal(samples)
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null, -3]`, string(out))
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *Params) {}},
		{name: "missing url", mutate: func(p *Params) { p.URL = "" }, wantErr: true},
		{name: "missing aggregate", mutate: func(p *Params) { p.AggregateType = "" }, wantErr: true},
		{name: "zero archive interval", mutate: func(p *Params) { p.ArchiveIntervalMinutes = 0 }, wantErr: true},
		{name: "zero min points", mutate: func(p *Params) { p.MinDataPoints = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
