package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	labels []string
	err    error
}

func (s stubLister) ListBookableDays(context.Context) ([]string, error) {
	return s.labels, s.err
}

func TestBuildPreservesSiteOrder(t *testing.T) {
	c, err := Build(context.Background(), stubLister{labels: []string{
		"03/06/2026", "01/06/2026", "02/06/2026",
	}})
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	assert.Equal(t, []string{"03/06/2026", "01/06/2026", "02/06/2026"}, c.Labels())
	for i, d := range c.Days() {
		assert.Equal(t, i, d.Position)
		assert.Equal(t, mustDate(t, d.Label), d.Date)
		assert.Equal(t, d.Date.Weekday().String(), d.Weekday)
	}
}

func TestBuildSkipsUnparseableLabels(t *testing.T) {
	c, err := Build(context.Background(), stubLister{labels: []string{
		"01/01/2099", "not-a-date", "31/02/2099",
	}})
	require.NoError(t, err)

	// 31/02 is not a valid calendar date, so only the first label survives.
	assert.Equal(t, []string{"01/01/2099"}, c.Labels())
	assert.Equal(t, 0, c.Days()[0].Position)
}

func TestBuildNoControls(t *testing.T) {
	_, err := Build(context.Background(), stubLister{})
	assert.ErrorIs(t, err, ErrNoDays)
}

func TestBuildAdapterError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Build(context.Background(), stubLister{err: boom})
	assert.ErrorIs(t, err, boom)
}
