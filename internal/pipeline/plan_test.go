// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPlan(t *testing.T, line string) *Plan {
	t.Helper()
	p, err := Parse(line, Options{})
	require.NoError(t, err)
	return BuildPlan(p)
}

func TestBuildPlanPipeCount(t *testing.T) {
	for n, line := range []string{
		"a",
		"a | b",
		"a | b | c",
		"a | b | c | d | e",
	} {
		plan := mustPlan(t, line)
		assert.Len(t, plan.Stages, n+1, line)
		assert.Equal(t, n, plan.Pipes, line)
	}
}

func TestBuildPlanSingleInherits(t *testing.T) {
	plan := mustPlan(t, "ls -l")
	st := plan.Stages[0]
	assert.Equal(t, FromInherit, st.Stdin.Kind)
	assert.Equal(t, ToInherit, st.Stdout.Kind)
	assert.Equal(t, -1, st.ClosesPipe)
}

func TestBuildPlanInteriorStages(t *testing.T) {
	plan := mustPlan(t, "a | b | c")

	assert.Equal(t, Source{Kind: FromInherit}, plan.Stages[0].Stdin)
	assert.Equal(t, Sink{Kind: ToPipe, Pipe: 0}, plan.Stages[0].Stdout)

	assert.Equal(t, Source{Kind: FromPipe, Pipe: 0}, plan.Stages[1].Stdin)
	assert.Equal(t, Sink{Kind: ToPipe, Pipe: 1}, plan.Stages[1].Stdout)

	assert.Equal(t, Source{Kind: FromPipe, Pipe: 1}, plan.Stages[2].Stdin)
	assert.Equal(t, Sink{Kind: ToInherit}, plan.Stages[2].Stdout)
}

func TestBuildPlanFirstAndLastNeverTouchPipes(t *testing.T) {
	plan := mustPlan(t, "a < in | b | c > out")
	first, last := plan.Stages[0], plan.Stages[len(plan.Stages)-1]
	assert.NotEqual(t, FromPipe, first.Stdin.Kind)
	assert.NotEqual(t, ToPipe, last.Stdout.Kind)
	assert.NotEqual(t, ToTee, last.Stdout.Kind)
}

func TestBuildPlanInputOverridesPipe(t *testing.T) {
	plan := mustPlan(t, "a | b < in.txt")
	st := plan.Stages[1]
	assert.Equal(t, Source{Kind: FromFile, Path: "in.txt"}, st.Stdin)
	assert.Equal(t, 0, st.ClosesPipe)
}

func TestBuildPlanInteriorRedirectTees(t *testing.T) {
	plan := mustPlan(t, "a >> mid.txt | b > out.txt")
	assert.Equal(t, Sink{Kind: ToTee, Pipe: 0, Path: "mid.txt", Mode: OutputAppend}, plan.Stages[0].Stdout)
	assert.Equal(t, Sink{Kind: ToFile, Path: "out.txt", Mode: OutputTruncate}, plan.Stages[1].Stdout)
	assert.Equal(t, Source{Kind: FromPipe, Pipe: 0}, plan.Stages[1].Stdin)
}

func TestPlanString(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)

	cases := map[string]string{
		"plan-single":   "ls -l",
		"plan-three":    "cat notes.txt | sort | uniq -c",
		"plan-redirect": "sort < in.txt > out.txt",
		"plan-tee":      "cat < in.txt > copy.txt | wc -l >> counts.txt",
		"plan-override": "echo ignored | cat < in.txt",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			g.Assert(t, name, []byte(mustPlan(t, line).String()))
		})
	}
}
