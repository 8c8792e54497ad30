package jobid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimozcann/adtrace/internal/jobid"
	"github.com/selimozcann/adtrace/internal/model"
)

func TestParse(t *testing.T) {
	t.Parallel()
	n, err := jobid.Parse("interception-job-42.0")
	require.NoError(t, err)
	assert.Equal(t, 42.0, n)

	_, err = jobid.Parse("job-42")
	assert.ErrorIs(t, err, jobid.ErrMalformedInterceptionID)
	_, err = jobid.Parse("interception-job-abc")
	assert.ErrorIs(t, err, jobid.ErrMalformedInterceptionID)
}

func TestAssign(t *testing.T) {
	t.Parallel()
	reqs := []model.Request{
		{URL: "https://b.example/", InterceptionID: "interception-job-3.0"},
		{URL: "data:image/png;base64,AA", RequestID: "77"},
		{URL: "https://a.example/", InterceptionID: "interception-job-1.0"},
		{URL: "https://c.example/", RequestID: "12"},
		{URL: "https://d.example/", InterceptionID: "weird-7"},
		{URL: "https://e.example/", InterceptionID: "interception-job-2.0"},
	}
	kept, dropped := jobid.Assign(reqs)

	urls := make([]string, len(kept))
	for i, r := range kept {
		urls[i] = r.URL
		require.NotNil(t, r.JobID)
	}
	assert.Equal(t, []string{"https://a.example/", "https://e.example/", "https://b.example/"}, urls)
	assert.Nil(t, reqs[0].JobID, "input requests are not modified")

	require.Len(t, dropped, 3)
	assert.ErrorIs(t, dropped[0].Err, jobid.ErrNotIntercepted)
	assert.Equal(t, 1, dropped[0].Index)
	assert.ErrorIs(t, dropped[1].Err, jobid.ErrMissingInterceptionID)
	assert.ErrorIs(t, dropped[2].Err, jobid.ErrMalformedInterceptionID)
}

func TestAssignIsIdempotent(t *testing.T) {
	t.Parallel()
	reqs := []model.Request{
		{URL: "https://b.example/", InterceptionID: "interception-job-2"},
		{URL: "https://a.example/", InterceptionID: "interception-job-1"},
	}
	once, _ := jobid.Assign(reqs)
	twice, dropped := jobid.Assign(once)
	assert.Empty(t, dropped)
	assert.Equal(t, once, twice)
}
