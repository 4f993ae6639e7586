package transport

import (
	"testing"

	"github.com/matst80/slask-list/pkg/types"
	"github.com/stretchr/testify/assert"
)

type queueScheduler struct {
	tasks []func()
}

func (q *queueScheduler) Post(fn func()) {
	q.tasks = append(q.tasks, fn)
}

func (q *queueScheduler) run() {
	for len(q.tasks) > 0 {
		fn := q.tasks[0]
		q.tasks = q.tasks[1:]
		fn()
	}
}

func TestOperationResolvesOnce(t *testing.T) {
	op := NewOperation(nil)
	var got []string
	op.Then(func(html string) { got = append(got, html) }, func(f *types.Failure) { got = append(got, "fail") })
	op.Resolve("<ul></ul>")
	op.Reject(&types.Failure{Status: 500})
	op.Resolve("again")
	op.Then(func(html string) { got = append(got, "late:"+html) }, nil)

	assert.True(t, op.Settled())
	assert.Equal(t, []string{"<ul></ul>", "late:<ul></ul>"}, got)
}

func TestOperationReject(t *testing.T) {
	op := NewOperation(nil)
	var failure *types.Failure
	op.Then(nil, func(f *types.Failure) { failure = f })
	op.Reject(nil)
	assert.NotNil(t, failure)
	assert.Equal(t, "error", failure.StatusText)
}

func TestOperationUsesScheduler(t *testing.T) {
	s := &queueScheduler{}
	op := NewOperation(s)
	called := false
	op.Then(func(string) { called = true }, nil)
	op.Resolve("x")
	assert.False(t, called)
	s.run()
	assert.True(t, called)
}

func TestOperationPostsContinuationsAsOneTask(t *testing.T) {
	s := &queueScheduler{}
	op := NewOperation(s)
	var got []string
	op.Then(func(string) { got = append(got, "pending") }, nil)
	op.Then(func(html string) { got = append(got, "swap "+html) }, nil)
	op.Resolve("x")

	assert.Len(t, s.tasks, 1)
	s.run()
	assert.Equal(t, []string{"pending", "swap x"}, got)
}
