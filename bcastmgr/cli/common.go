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

package cli

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mynewt.apache.org/leabcast/bcast/bcdefs"
	bc "mynewt.apache.org/leabcast/bcast/broadcaster"
	"mynewt.apache.org/leabcast/bcast/sim"
	"mynewt.apache.org/leabcast/bcast/task"
	"mynewt.apache.org/leabcast/bcastmgr/bmutil"
	"mynewt.apache.org/leabcast/bcastmgr/config"
	"mynewt.apache.org/newt/util"
)

var onExit func()

func BmSetOnExit(cb func()) {
	onExit = cb
}

func BmExit(code int) {
	if onExit != nil {
		onExit()
	}
	os.Exit(code)
}

func bmUsage(cmd *cobra.Command, err error) {
	if err != nil {
		sErr := err.Error()
		if nerr, ok := err.(*util.NewtError); ok {
			sErr = nerr.Text
			if util.Verbosity >= util.VERBOSITY_VERBOSE &&
				len(nerr.StackTrace) > 0 {

				sErr += "\n" + string(nerr.StackTrace)
			}
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", sErr)
	}

	if cmd != nil {
		fmt.Printf("\n")
		fmt.Printf("%s - ", cmd.Name())
		cmd.Help()
	}

	BmExit(1)
}

// An owner event, as reported through the broadcaster callbacks.
type ownerEvent struct {
	IsState     bool
	State       bc.State
	BigConfig   *bc.BigConfig
	CreateOk    *bool
	Destroyed   bool
	Address     *bcdefs.BleAddr
	AddressType bcdefs.BleAddrType
	BigHandles  []uint16
	Updated     bool
}

// Receives broadcaster notifications and forwards them to the command that
// drives the broadcast.
type owner struct {
	quiet   bool
	eventCh chan ownerEvent
}

func newOwner(quiet bool) *owner {
	return &owner{
		quiet:   quiet,
		eventCh: make(chan ownerEvent, 256),
	}
}

func (o *owner) printf(format string, args ...interface{}) {
	if !o.quiet {
		fmt.Printf(format, args...)
	}
}

func (o *owner) emit(e ownerEvent) {
	select {
	case o.eventCh <- e:
	default:
	}
}

func (o *owner) drain() {
	for {
		select {
		case <-o.eventCh:
		default:
			return
		}
	}
}

func (o *owner) OnStateMachineCreateStatus(id uint32, initialized bool) {
	o.printf("[0x%06x] create status: initialized=%t\n", id, initialized)
	ok := initialized
	o.emit(ownerEvent{CreateOk: &ok})
}

func (o *owner) OnStateMachineDestroyed(id uint32) {
	o.printf("[0x%06x] destroyed\n", id)
	o.emit(ownerEvent{Destroyed: true})
}

func (o *owner) OnStateMachineEvent(id uint32, state bc.State,
	data interface{}) {

	o.printf("[0x%06x] state: %s\n", id, state)

	e := ownerEvent{IsState: true, State: state}
	if cfg, ok := data.(*bc.BigConfig); ok {
		o.printf("[0x%06x]   big: %s\n", id, cfg)
		e.BigConfig = cfg
	}
	o.emit(e)
}

func (o *owner) OnOwnAddressResponse(id uint32, addrType bcdefs.BleAddrType,
	addr bcdefs.BleAddr) {

	o.printf("[0x%06x] own address: %s (%s)\n", id, addr, addrType)
	a := addr
	o.emit(ownerEvent{Address: &a, AddressType: addrType})
}

func (o *owner) OnBigCreated(handles []uint16) {
	o.printf("BIG created: handles=%v\n", handles)
	o.emit(ownerEvent{BigHandles: handles})
}

func (o *owner) OnAnnouncementUpdated(id uint32) {
	o.printf("[0x%06x] announcement updated\n", id)
	o.emit(ownerEvent{Updated: true})
}

func isStable(s bc.State) bool {
	switch s {
	case bc.STATE_STOPPED, bc.STATE_CONFIGURED, bc.STATE_STREAMING:
		return true
	default:
		return false
	}
}

// Waits for the broadcast to settle in a stable state.
func (o *owner) waitStable(timeout time.Duration) (bc.State, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case e := <-o.eventCh:
			if e.IsState && isStable(e.State) {
				return e.State, nil
			}

		case <-timer.C:
			return 0, util.FmtNewtError("timeout waiting for broadcast "+
				"to settle (%s)", timeout)
		}
	}
}

// A single simulated broadcast source and the machinery that drives it.
type session struct {
	tq    *task.TaskQueue
	radio *sim.Radio
	bctx  *bc.Context
	owner *owner
	sm    *bc.BroadcastStateMachine

	// Request log index at the start of the last operation.
	mark int

	mtx     sync.Mutex
	stopped bool
}

var activeSesnMtx sync.Mutex
var activeSesn *session

func setActiveSession(s *session) {
	activeSesnMtx.Lock()
	defer activeSesnMtx.Unlock()

	activeSesn = s
}

// Closes the session opened by the running command, if any.
func CloseActiveSession() {
	activeSesnMtx.Lock()
	s := activeSesn
	activeSesn = nil
	activeSesnMtx.Unlock()

	if s != nil {
		s.close()
	}
}

func profileStateMachineConfig() (bc.StateMachineConfig, error) {
	p, err := config.GlobalProfileMgr().Profile(bmutil.ProfileName)
	if err != nil {
		return bc.StateMachineConfig{}, err
	}

	for _, kv := range bmutil.Overrides {
		if err := p.Set(kv); err != nil {
			return bc.StateMachineConfig{}, err
		}
	}

	cfg, err := p.StateMachineConfig()
	if err != nil {
		return cfg, util.ChildNewtError(err)
	}

	return cfg, nil
}

func newSession(faults sim.Faults, quiet bool) (*session, error) {
	cfg, err := profileStateMachineConfig()
	if err != nil {
		return nil, err
	}

	tq := task.NewTaskQueue("bcast")
	s := &session{
		tq:    &tq,
		owner: newOwner(quiet),
	}

	s.radio = sim.NewRadio(s.tq)
	s.radio.SetFaults(faults)

	s.bctx, err = bc.NewContext(s.owner, s.radio, s.radio)
	if err != nil {
		return nil, util.ChildNewtError(err)
	}
	s.radio.Bind(s.bctx)

	if err := s.tq.Start(64); err != nil {
		return nil, util.ChildNewtError(err)
	}

	s.sm, err = s.bctx.CreateInstance(cfg)
	if err != nil {
		s.tq.Stop(err)
		return nil, util.ChildNewtError(err)
	}

	setActiveSession(s)
	return s, nil
}

// Runs fn on the broadcast's processing context.
func (s *session) do(fn func(sm *bc.BroadcastStateMachine)) error {
	return s.tq.Run(func() error {
		fn(s.sm)
		return nil
	})
}

// Delivers a message and waits for the broadcast to settle.
func (s *session) send(msg bc.Message) (bc.State, error) {
	s.owner.drain()
	s.mark = s.radio.NumRequests()

	var state bc.State
	if err := s.do(func(sm *bc.BroadcastStateMachine) {
		sm.ProcessMessage(msg)
		state = sm.State()
	}); err != nil {
		return 0, util.ChildNewtError(err)
	}

	// Ignored message.
	if isStable(state) {
		return state, nil
	}

	return s.owner.waitStable(bmutil.TimeoutDuration())
}

func (s *session) initialize() (bc.State, error) {
	s.mark = s.radio.NumRequests()
	ok := false
	if err := s.do(func(sm *bc.BroadcastStateMachine) {
		ok = sm.Initialize()
	}); err != nil {
		return 0, util.ChildNewtError(err)
	}
	if !ok {
		return bc.STATE_STOPPED, nil
	}

	return s.owner.waitStable(bmutil.TimeoutDuration())
}

// Failed hardware completions since the last operation started, as
// HostErrors.
func (s *session) failures() []error {
	return s.radio.Failures(s.mark)
}

func (s *session) close() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	s.do(func(sm *bc.BroadcastStateMachine) {
		sm.Destroy()
	})
	s.tq.Stop(fmt.Errorf("session closed"))
}
