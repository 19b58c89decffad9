package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBoard(t *testing.T, env *testEnv, titles ...string) []uint {
	t.Helper()
	ids := make([]uint, 0, len(titles))
	for _, title := range titles {
		task, err := env.tasks.CreateTask(context.Background(), TaskInput{Title: title})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}
	return ids
}

func activeOrder(t *testing.T, env *testEnv) ([]uint, []int) {
	t.Helper()
	tasks, err := env.tasks.ListActive(context.Background())
	require.NoError(t, err)
	ids := make([]uint, 0, len(tasks))
	orders := make([]int, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
		orders = append(orders, task.SortOrder)
	}
	return ids, orders
}

func TestCreateAppendsToNextSlot(t *testing.T) {
	env := newTestEnv(t)
	createBoard(t, env, "a", "b", "c")

	_, orders := activeOrder(t, env)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestSetPositionMovesTaskToFront(t *testing.T) {
	env := newTestEnv(t)
	ids := createBoard(t, env, "a", "b", "c")

	require.NoError(t, env.order.SetPosition(context.Background(), ids[2], 1))

	gotIDs, orders := activeOrder(t, env)
	assert.Equal(t, []uint{ids[2], ids[0], ids[1]}, gotIDs)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestSetPositionClampsBeyondEnd(t *testing.T) {
	env := newTestEnv(t)
	ids := createBoard(t, env, "a", "b", "c")

	require.NoError(t, env.order.SetPosition(context.Background(), ids[0], 99))

	gotIDs, orders := activeOrder(t, env)
	assert.Equal(t, []uint{ids[1], ids[2], ids[0]}, gotIDs)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestSetPositionRejectsNonPositive(t *testing.T) {
	env := newTestEnv(t)
	ids := createBoard(t, env, "a", "b")

	err := env.order.SetPosition(context.Background(), ids[0], 0)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestSetPositionUnknownTaskIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ids := createBoard(t, env, "a", "b")

	require.NoError(t, env.order.SetPosition(context.Background(), 12345, 1))

	gotIDs, orders := activeOrder(t, env)
	assert.Equal(t, ids, gotIDs)
	assert.Equal(t, []int{0, 1}, orders)
}

func TestReorderFullSequence(t *testing.T) {
	env := newTestEnv(t)
	ids := createBoard(t, env, "a", "b", "c")

	require.NoError(t, env.order.Reorder(context.Background(), []uint{ids[1], ids[2], ids[0]}))

	gotIDs, orders := activeOrder(t, env)
	assert.Equal(t, []uint{ids[1], ids[2], ids[0]}, gotIDs)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestReorderPartialSequenceKeepsRemainderOrder(t *testing.T) {
	env := newTestEnv(t)
	ids := createBoard(t, env, "a", "b", "c", "d")

	require.NoError(t, env.order.Reorder(context.Background(), []uint{ids[3], ids[1]}))

	gotIDs, orders := activeOrder(t, env)
	assert.Equal(t, []uint{ids[3], ids[1], ids[0], ids[2]}, gotIDs)
	assert.Equal(t, []int{0, 1, 2, 3}, orders)
}

func TestReorderEmptySequenceFails(t *testing.T) {
	env := newTestEnv(t)
	ids := createBoard(t, env, "a", "b")

	err := env.order.Reorder(context.Background(), nil)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	gotIDs, orders := activeOrder(t, env)
	assert.Equal(t, ids, gotIDs)
	assert.Equal(t, []int{0, 1}, orders)
}

func TestReorderIgnoresUnknownAndInactiveIDs(t *testing.T) {
	env := newTestEnv(t)
	ids := createBoard(t, env, "a", "b")

	done, err := env.tasks.CreateTask(context.Background(), TaskInput{Title: "done"})
	require.NoError(t, err)
	ok, err := env.tasks.CompleteTask(context.Background(), done.ID, tuesday())
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, env.order.Reorder(context.Background(), []uint{999, done.ID, ids[1], ids[0]}))

	gotIDs, orders := activeOrder(t, env)
	assert.Equal(t, []uint{ids[1], ids[0]}, gotIDs)
	assert.Equal(t, []int{0, 1}, orders)
}

func TestCreateWithExplicitPosition(t *testing.T) {
	env := newTestEnv(t)
	ids := createBoard(t, env, "a", "b")

	position := 1
	task, err := env.tasks.CreateTask(context.Background(), TaskInput{Title: "c", Position: &position})
	require.NoError(t, err)

	gotIDs, orders := activeOrder(t, env)
	assert.Equal(t, []uint{task.ID, ids[0], ids[1]}, gotIDs)
	assert.Equal(t, []int{0, 1, 2}, orders)
}

func TestDenseOrderSurvivesCompletionGaps(t *testing.T) {
	env := newTestEnv(t)
	ids := createBoard(t, env, "a", "b", "c")

	ok, err := env.tasks.CompleteTask(context.Background(), ids[1], tuesday())
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, env.order.SetPosition(context.Background(), ids[2], 1))

	gotIDs, orders := activeOrder(t, env)
	assert.Equal(t, []uint{ids[2], ids[0]}, gotIDs)
	assert.Equal(t, []int{0, 1}, orders)
}
