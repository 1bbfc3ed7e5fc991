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

package broadcaster

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"mynewt.apache.org/leabcast/bcast/announce"
	"mynewt.apache.org/leabcast/bcast/bcdefs"
	"mynewt.apache.org/leabcast/bcast/bcutil"
)

// Context binds the owner callbacks and the hardware interfaces shared by a
// set of broadcast state machines.  It allocates BIG handles and routes
// hardware completions to the machine that issued the request.
//
// The registry is safe for concurrent use.  The Dispatch methods call into
// state machines and must run on the processing context that drives them.
type Context struct {
	cbs  Callbacks
	adv  AdvertisingManager
	ctlr Controller

	mtx        sync.Mutex
	machines   map[announce.BroadcastId]*BroadcastStateMachine
	bigHandles map[uint8]*BroadcastStateMachine
}

func NewContext(cbs Callbacks, adv AdvertisingManager,
	ctlr Controller) (*Context, error) {

	if cbs == nil {
		return nil, fmt.Errorf("broadcast context requires owner callbacks")
	}
	if adv == nil {
		return nil, fmt.Errorf("broadcast context requires an advertising manager")
	}
	if ctlr == nil {
		return nil, fmt.Errorf("broadcast context requires a controller")
	}

	return &Context{
		cbs:        cbs,
		adv:        adv,
		ctlr:       ctlr,
		machines:   map[announce.BroadcastId]*BroadcastStateMachine{},
		bigHandles: map[uint8]*BroadcastStateMachine{},
	}, nil
}

func (c *Context) allocBigHandle() (uint8, error) {
	for h := 0; h <= int(BIG_HANDLE_MAX); h++ {
		if _, ok := c.bigHandles[uint8(h)]; !ok {
			return uint8(h), nil
		}
	}

	return 0, bcutil.NewResourceError("no free BIG handles")
}

// CreateInstance constructs a STOPPED state machine for the given broadcast
// source.  The configuration is copied.
func (c *Context) CreateInstance(
	cfg StateMachineConfig) (*BroadcastStateMachine, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, ok := c.machines[cfg.BroadcastId]; ok {
		return nil, bcutil.NewAlreadyError(fmt.Sprintf(
			"broadcast %s already exists", cfg.BroadcastId))
	}

	h, err := c.allocBigHandle()
	if err != nil {
		return nil, err
	}

	m := newBroadcastStateMachine(c, cfg, h)
	c.machines[cfg.BroadcastId] = m
	c.bigHandles[h] = m

	log.Debugf("Created broadcast: %s", m)

	return m, nil
}

func (c *Context) release(m *BroadcastStateMachine) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.machines[m.BroadcastId()] == m {
		delete(c.machines, m.BroadcastId())
	}
	if c.bigHandles[m.bigHandle] == m {
		delete(c.bigHandles, m.bigHandle)
	}
}

func (c *Context) Lookup(id announce.BroadcastId) *BroadcastStateMachine {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.machines[id]
}

func (c *Context) Machines() []*BroadcastStateMachine {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	ms := make([]*BroadcastStateMachine, 0, len(c.machines))
	for _, m := range c.machines {
		ms = append(ms, m)
	}

	return ms
}

func (c *Context) findWhere(
	pred func(m *BroadcastStateMachine) bool) *BroadcastStateMachine {

	c.mtx.Lock()
	defer c.mtx.Unlock()

	for _, m := range c.machines {
		if pred(m) {
			return m
		}
	}

	return nil
}

func (c *Context) bySid(sid uint8) *BroadcastStateMachine {
	if sid == ADV_SID_UNDEFINED {
		return nil
	}

	return c.findWhere(func(m *BroadcastStateMachine) bool {
		return m.AdvertisingSid() == sid
	})
}

func (c *Context) byIsoHandle(connHandle uint16) *BroadcastStateMachine {
	return c.findWhere(func(m *BroadcastStateMachine) bool {
		return m.OwnsIsoHandle(connHandle)
	})
}

func (c *Context) byBigHandle(bigHandle uint8) *BroadcastStateMachine {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return c.bigHandles[bigHandle]
}

func dropped(what string, args ...interface{}) {
	log.Debugf("No broadcast for %s; dropping", fmt.Sprintf(what, args...))
}

func (c *Context) DispatchCreateAnnouncement(id announce.BroadcastId,
	sid uint8, txPower int8, status uint8) {

	m := c.Lookup(id)
	if m == nil {
		dropped("create announcement completion: id=%s", id)
		return
	}

	m.OnCreateAnnouncement(sid, txPower, status)
}

func (c *Context) DispatchEnableAnnouncement(sid uint8, enable bool,
	status uint8) {

	m := c.bySid(sid)
	if m == nil {
		dropped("enable announcement completion: sid=%d", sid)
		return
	}

	m.OnEnableAnnouncement(enable, status)
}

func (c *Context) DispatchUpdateAnnouncement(sid uint8, status uint8) {
	m := c.bySid(sid)
	if m == nil {
		dropped("update announcement completion: sid=%d", sid)
		return
	}

	m.OnUpdateAnnouncement(status)
}

func (c *Context) DispatchRemoveAnnouncement(sid uint8, status uint8) {
	m := c.bySid(sid)
	if m == nil {
		dropped("remove announcement completion: sid=%d", sid)
		return
	}

	m.OnRemoveAnnouncement(status)
}

func (c *Context) DispatchOwnAddress(sid uint8, addrType bcdefs.BleAddrType,
	addr bcdefs.BleAddr) {

	m := c.bySid(sid)
	if m == nil {
		dropped("own address response: sid=%d", sid)
		return
	}

	m.OnOwnAddress(addrType, addr)
}

// DispatchHciEvent routes a BIG related LE meta event by its BIG handle.
func (c *Context) DispatchHciEvent(event uint8, data []byte) {
	var bigHandle uint8

	switch event {
	case HCI_EVT_LE_CREATE_BIG_COMPLETE:
		if len(data) < 2 {
			log.Debugf("Dropping malformed create BIG complete; len=%d",
				len(data))
			return
		}
		bigHandle = data[1]

	case HCI_EVT_LE_TERMINATE_BIG_COMPLETE:
		if len(data) < 1 {
			log.Debugf("Dropping malformed terminate BIG complete; len=%d",
				len(data))
			return
		}
		bigHandle = data[0]

	default:
		dropped("HCI event 0x%02x", event)
		return
	}

	m := c.byBigHandle(bigHandle)
	if m == nil {
		dropped("HCI event 0x%02x: big_handle=0x%02x", event, bigHandle)
		return
	}

	m.HandleHciEvent(event, data)
}

func (c *Context) DispatchSetupIsoDataPath(status uint8, connHandle uint16) {
	m := c.byIsoHandle(connHandle)
	if m == nil {
		dropped("ISO data path setup completion: handle=0x%04x", connHandle)
		return
	}

	m.OnSetupIsoDataPath(status, connHandle)
}

func (c *Context) DispatchRemoveIsoDataPath(status uint8, connHandle uint16) {
	m := c.byIsoHandle(connHandle)
	if m == nil {
		dropped("ISO data path removal completion: handle=0x%04x", connHandle)
		return
	}

	m.OnRemoveIsoDataPath(status, connHandle)
}

var _ Machine = (*BroadcastStateMachine)(nil)
