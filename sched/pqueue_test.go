package sched_test

import (
	"testing"

	"github.com/oonfwd/oonfwd/sched"
	"github.com/stretchr/testify/assert"
)

func TestQueueBasics(t *testing.T) {
	q := sched.NewQueue[int, int]()
	assert.Equal(t, 0, q.Len())
	q.Push(1, 1)
	q.Push(2, 3)
	q.Push(3, 2)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 1, q.PeekPriority())
	assert.Equal(t, 1, q.Pop())
	assert.Equal(t, 2, q.PeekPriority())
	assert.Equal(t, 3, q.Pop())
	assert.Equal(t, 2, q.Pop())
	assert.Equal(t, 0, q.Len())
}

func TestQueueRemove(t *testing.T) {
	q := sched.NewQueue[string, int]()
	a := q.Push("a", 5)
	q.Push("b", 1)
	q.Remove(a)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, "b", q.Pop())
}
