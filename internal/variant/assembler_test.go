package variant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/worksheets/internal/planner"
	"github.com/abhisek/worksheets/internal/taskbank"
	"github.com/abhisek/worksheets/internal/template"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testBank(t *testing.T, perSkill int) *taskbank.Bank {
	t.Helper()
	var tasks []taskbank.Task
	for _, skill := range []string{"S1", "S2"} {
		for i := 0; i < perSkill; i++ {
			tasks = append(tasks, taskbank.Task{
				ID:         fmt.Sprintf("%s-%02d", skill, i),
				SkillID:    skill,
				Difficulty: i%3 + 1,
				Content:    "q",
				Answer:     "a",
			})
		}
	}
	bank, err := taskbank.New(tasks)
	require.NoError(t, err)
	return bank
}

func testTemplate() template.Template {
	return template.Template{
		ID:      "tmpl",
		Title:   "Practice",
		TopicID: "topic",
		Sections: []template.Section{
			{Label: "A", SkillIDs: []string{"S1"}, Count: 6, Difficulty: template.DifficultyRange{Min: 1, Max: 3}},
			{Label: "B", SkillIDs: []string{"S2"}, Count: 4, Difficulty: template.DifficultyRange{Min: 1, Max: 3}},
		},
	}
}

func assertVariantValid(t *testing.T, v Variant) {
	t.Helper()
	require.Len(t, v.Assignments, 10)
	ids := make(map[string]bool)
	counts := make(map[string]int)
	for _, a := range v.Assignments {
		assert.False(t, ids[a.Task.ID], "variant %d repeats %s", v.Index, a.Task.ID)
		ids[a.Task.ID] = true
		counts[a.SectionLabel]++
	}
	assert.Equal(t, 6, counts["A"])
	assert.Equal(t, 4, counts["B"])
}

func TestAssemble_MultipleVariants(t *testing.T) {
	bank := testBank(t, 12)
	a := New(DefaultConfig(), nil)

	batch, err := a.Assemble(context.Background(), bank, Request{
		Template:      testTemplate(),
		VariantsCount: 3,
		BaseSeed:      "class-7b",
	})
	require.NoError(t, err)
	require.Len(t, batch.Variants, 3)
	assert.Equal(t, "class-7b", batch.BaseSeed)

	for i, v := range batch.Variants {
		assert.Equal(t, i, v.Index)
		assert.Equal(t, VariantSeed("class-7b", i), v.Seed)
		assertVariantValid(t, v)
	}
}

func TestAssemble_TasksMayRepeatAcrossVariants(t *testing.T) {
	// With exactly as many tasks as slots, every variant uses the whole
	// bank, so repeats across variants are unavoidable.
	var tasks []taskbank.Task
	for i := 0; i < 6; i++ {
		tasks = append(tasks, taskbank.Task{ID: fmt.Sprintf("S1-%d", i), SkillID: "S1", Difficulty: 1})
	}
	for i := 0; i < 4; i++ {
		tasks = append(tasks, taskbank.Task{ID: fmt.Sprintf("S2-%d", i), SkillID: "S2", Difficulty: 2})
	}
	bank, err := taskbank.New(tasks)
	require.NoError(t, err)

	batch, err := New(DefaultConfig(), nil).Assemble(context.Background(), bank, Request{
		Template:      testTemplate(),
		VariantsCount: 3,
		BaseSeed:      "tight",
	})
	require.NoError(t, err)

	first := batch.Variants[0].TaskIDs()
	sort.Strings(first)
	for _, v := range batch.Variants[1:] {
		assertVariantValid(t, v)
		ids := v.TaskIDs()
		sort.Strings(ids)
		assert.Equal(t, first, ids)
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	bank := testBank(t, 12)
	req := Request{Template: testTemplate(), VariantsCount: 4, BaseSeed: "fixed", Shuffle: true}

	one, err := New(Config{Concurrency: 4}, nil).Assemble(context.Background(), bank, req)
	require.NoError(t, err)
	two, err := New(Config{Concurrency: 1}, nil).Assemble(context.Background(), bank, req)
	require.NoError(t, err)

	assert.Equal(t, one.Variants, two.Variants)
}

func TestAssemble_VariantsDiffer(t *testing.T) {
	bank := testBank(t, 12)
	batch, err := New(DefaultConfig(), nil).Assemble(context.Background(), bank, Request{
		Template: testTemplate(), VariantsCount: 3, BaseSeed: "differ",
	})
	require.NoError(t, err)

	distinct := map[string]bool{}
	for _, v := range batch.Variants {
		distinct[fmt.Sprint(v.TaskIDs())] = true
	}
	assert.Greater(t, len(distinct), 1)
}

func TestAssemble_GeneratesBaseSeed(t *testing.T) {
	bank := testBank(t, 12)
	batch, err := New(DefaultConfig(), nil).Assemble(context.Background(), bank, Request{
		Template: testTemplate(), VariantsCount: 1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, batch.BaseSeed)
	assert.Equal(t, VariantSeed(batch.BaseSeed, 0), batch.Variants[0].Seed)
}

func TestAssemble_ShuffleRenumbersOrder(t *testing.T) {
	bank := testBank(t, 12)
	a := New(DefaultConfig(), nil)
	tm := testTemplate()

	plain, err := a.Assemble(context.Background(), bank, Request{Template: tm, VariantsCount: 1, BaseSeed: "s"})
	require.NoError(t, err)
	shuffled, err := a.Assemble(context.Background(), bank, Request{Template: tm, VariantsCount: 1, BaseSeed: "s", Shuffle: true})
	require.NoError(t, err)

	p := plain.Variants[0].Assignments
	s := shuffled.Variants[0].Assignments
	for i, x := range p {
		assert.Equal(t, i, x.OrderIndex)
		assert.Equal(t, i, x.SlotIndex)
	}
	for i, x := range s {
		assert.Equal(t, i, x.OrderIndex)
	}

	// Shuffling happens after solving, so the same tasks are chosen.
	assert.ElementsMatch(t, plain.Variants[0].TaskIDs(), shuffled.Variants[0].TaskIDs())
	assertVariantValid(t, shuffled.Variants[0])
	assert.Equal(t, Shuffle(p, ShuffleSeed(plain.Variants[0].Seed)), s)
}

func TestAssemble_FailureAnnotated(t *testing.T) {
	bank := testBank(t, 12)
	tm := testTemplate()
	tm.Sections[1].Difficulty = template.DifficultyRange{Min: 5, Max: 5}

	batch, err := New(DefaultConfig(), nil).Assemble(context.Background(), bank, Request{
		Template: tm, VariantsCount: 3, BaseSeed: "fail",
	})
	require.Error(t, err)
	assert.Nil(t, batch)

	var ve *VariantError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 3, ve.VariantsCount)
	assert.Equal(t, 24, ve.RemainingUniqueTasks)
	assert.GreaterOrEqual(t, ve.VariantIndex, 0)
	assert.Less(t, ve.VariantIndex, 3)

	var ite *planner.InsufficientTasksError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, "B", ite.SectionLabel)
	assert.Equal(t, 4, ite.RequiredCount)
	assert.Equal(t, 0, ite.AvailableCount)
}

func TestAssemble_InvalidTemplate(t *testing.T) {
	tm := testTemplate()
	tm.Sections[0].SkillIDs = nil
	_, err := New(DefaultConfig(), nil).Assemble(context.Background(), testBank(t, 12), Request{Template: tm, VariantsCount: 1})

	var ite *template.InvalidTemplateError
	assert.True(t, errors.As(err, &ite))
	var ve *VariantError
	assert.False(t, errors.As(err, &ve))
}

func TestAssemble_QuotaGuard(t *testing.T) {
	bank := testBank(t, 12)
	cfg := DefaultConfig()
	cfg.MaxQuotaRatio = 0.25 // 6 of 24 tasks

	_, err := New(cfg, nil).Assemble(context.Background(), bank, Request{Template: testTemplate(), VariantsCount: 1, BaseSeed: "q"})
	var ite *planner.InsufficientTasksError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, planner.SourceQuota, ite.Source)
	assert.Equal(t, 10, ite.RequiredCount)
	assert.Equal(t, 6, ite.AvailableCount)

	// The guard rejects the batch as a whole, not a particular variant.
	var ve *VariantError
	assert.False(t, errors.As(err, &ve))
}

func TestAssemble_SectionShortfallBeatsQuotaGuard(t *testing.T) {
	var tasks []taskbank.Task
	for i := 1; i <= 3; i++ {
		tasks = append(tasks, taskbank.Task{ID: fmt.Sprintf("x%d", i), SkillID: "X", Difficulty: i, Content: "q", Answer: "a"})
	}
	bank, err := taskbank.New(tasks)
	require.NoError(t, err)

	tm := template.Template{
		ID: "hard", Title: "Hard", TopicID: "t",
		Sections: []template.Section{
			{Label: "hard X", SkillIDs: []string{"X"}, Count: 10, Difficulty: template.DifficultyRange{Min: 4, Max: 4}},
		},
	}

	_, err = New(DefaultConfig(), nil).Assemble(context.Background(), bank, Request{Template: tm, VariantsCount: 2, BaseSeed: "b"})

	var ite *planner.InsufficientTasksError
	require.True(t, errors.As(err, &ite), "got %v", err)
	assert.Equal(t, "hard X", ite.SectionLabel)
	assert.Equal(t, 10, ite.RequiredCount)
	assert.Equal(t, 0, ite.AvailableCount)
	assert.Equal(t, planner.SourcePrecheck, ite.Source)

	var ve *VariantError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 2, ve.VariantsCount)
	assert.Equal(t, 3, ve.RemainingUniqueTasks)
}

func TestAssemble_RejectsZeroVariants(t *testing.T) {
	_, err := New(DefaultConfig(), nil).Assemble(context.Background(), testBank(t, 12), Request{Template: testTemplate()})
	assert.ErrorIs(t, err, ErrNoVariants)
}

func TestAssemble_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultConfig(), nil).Assemble(ctx, testBank(t, 12), Request{Template: testTemplate(), VariantsCount: 2, BaseSeed: "c"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShuffle_DoesNotMutateInput(t *testing.T) {
	in := []planner.Assignment{
		{SlotIndex: 0, OrderIndex: 0, Task: taskbank.Task{ID: "a"}},
		{SlotIndex: 1, OrderIndex: 1, Task: taskbank.Task{ID: "b"}},
		{SlotIndex: 2, OrderIndex: 2, Task: taskbank.Task{ID: "c"}},
	}
	out := Shuffle(in, "x")
	assert.Equal(t, "a", in[0].Task.ID)
	assert.Len(t, out, 3)
}

func TestVariantOutput(t *testing.T) {
	v := Variant{Assignments: []planner.Assignment{
		{SlotIndex: 1, OrderIndex: 0, SectionLabel: "B", Task: taskbank.Task{ID: "t2"}},
		{SlotIndex: 0, OrderIndex: 1, SectionLabel: "A", Task: taskbank.Task{ID: "t1"}},
	}}
	assert.Equal(t, []OutputItem{
		{TaskID: "t2", SectionLabel: "B", OrderIndex: 0},
		{TaskID: "t1", SectionLabel: "A", OrderIndex: 1},
	}, v.Output())
	assert.Equal(t, []string{"t2", "t1"}, v.TaskIDs())
}

func TestSeeds(t *testing.T) {
	assert.Equal(t, "base:2", VariantSeed("base", 2))
	assert.Equal(t, "base:2:shuffle", ShuffleSeed(VariantSeed("base", 2)))
	assert.NotEqual(t, NewBaseSeed(), NewBaseSeed())
}
