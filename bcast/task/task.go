/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package task

import (
	"fmt"
	"sync"
)

// A single action that runs in the main loop.
type action struct {
	fn func() error
	ch chan error
}

// A queue for running jobs serially.  Jobs run in the order they were
// enqueued or posted.  Enqueueing never blocks, so a job may schedule further
// jobs.
type TaskQueue struct {
	acts   []action
	kickCh chan struct{}
	stopCh chan struct{}
	active bool
	name   string
	mtx    sync.Mutex
	wg     sync.WaitGroup
}

func NewTaskQueue(name string) TaskQueue {
	return TaskQueue{
		name: name,
	}
}

var InactiveError = fmt.Errorf("inactive task queue")

func (q *TaskQueue) push(act action) error {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if !q.active {
		return InactiveError
	}

	q.acts = append(q.acts, act)

	select {
	case q.kickCh <- struct{}{}:
	default:
	}

	return nil
}

func (q *TaskQueue) pop() (action, bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if len(q.acts) == 0 {
		return action{}, false
	}

	act := q.acts[0]
	q.acts[0] = action{}
	q.acts = q.acts[1:]
	return act, true
}

// Pushes the specified function onto the task queue.  When the job completes,
// the result is sent over the returned channel
func (q *TaskQueue) Enqueue(fn func() error) chan error {
	act := action{
		fn: fn,
		ch: make(chan error, 1),
	}

	if err := q.push(act); err != nil {
		act.ch <- err
		close(act.ch)
	}

	return act.ch
}

// Enqueues the specified function and waits for it to complete.  Calling this
// from within a job results in deadlock.
func (q *TaskQueue) Run(fn func() error) error {
	return <-q.Enqueue(fn)
}

// Enqueues the specified function without a result channel.
func (q *TaskQueue) Post(fn func()) error {
	return q.push(action{
		fn: func() error {
			fn()
			return nil
		},
	})
}

// Blocks until the queue contains no jobs, including jobs scheduled by the
// jobs that ran while waiting.
func (q *TaskQueue) Flush() error {
	for {
		pending := 0
		err := q.Run(func() error {
			q.mtx.Lock()
			pending = len(q.acts)
			q.mtx.Unlock()
			return nil
		})
		if err != nil {
			return err
		}
		if pending == 0 {
			return nil
		}
	}
}

// Starts the task queue.  A task queue must be started before jobs can be
// enqueued to it.  depth is the initial capacity of the job backlog.
func (q *TaskQueue) Start(depth int) error {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if q.active {
		return fmt.Errorf("Task queue started twice \"%s\"", q.name)
	}
	q.active = true

	q.acts = make([]action, 0, depth)

	kickCh := make(chan struct{}, 1)
	q.kickCh = kickCh

	stopCh := make(chan struct{})
	q.stopCh = stopCh

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		for {
			select {
			case <-kickCh:
				for {
					select {
					case <-stopCh:
						return
					default:
					}

					act, ok := q.pop()
					if !ok {
						break
					}

					err := act.fn()
					if act.ch != nil {
						act.ch <- err
						close(act.ch)
					}
				}

			case <-stopCh:
				return
			}
		}
	}()

	return nil
}

// Stops the task queue.  If there are any queued jobs, this causes them to
// fail with the specified error.  The task queue must be started again before
// it can be reused.  This function blocks until the task loop returns, so
// calling this from within a job results in deadlock.  If a job needs to stop
// the task queue, it should use StopNoWait instead.
func (q *TaskQueue) Stop(cause error) error {
	if err := q.StopNoWait(cause); err != nil {
		return err
	}

	// Wait for task loop to terminate.
	q.wg.Wait()
	return nil
}

// Stops the task queue.  If there are any queued jobs, this causes them to
// fail with the specified error.  The task queue must be started again before
// it can be reused.  If this function returns success, the stop procedure has
// successfully initiated, but not necessarily completed.
func (q *TaskQueue) StopNoWait(cause error) error {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	if !q.active {
		return fmt.Errorf("Task queue stopped twice \"%s\"", q.name)
	}

	// Stop the task loop.
	close(q.stopCh)

	// Fail unprocessed actions.
	for _, act := range q.acts {
		if act.ch != nil {
			act.ch <- cause
			close(act.ch)
		}
	}
	q.acts = nil

	q.active = false

	return nil
}

func (q *TaskQueue) Active() bool {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return q.active
}

// Number of jobs waiting to run.
func (q *TaskQueue) Pending() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return len(q.acts)
}
