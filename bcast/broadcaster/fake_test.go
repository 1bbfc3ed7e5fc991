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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mynewt.apache.org/leabcast/bcast/announce"
	"mynewt.apache.org/leabcast/bcast/bcdefs"
)

type enableReq struct {
	sid    uint8
	enable bool
}

type bigReq struct {
	handle uint8
	params BigParams
}

// Records every request; completions are delivered by the test.
type fakeHw struct {
	ops []string

	creates     []CreateAnnouncementReq
	enables     []enableReq
	updates     []UpdateAnnouncementReq
	removes     []uint8
	addrReqs    []uint8
	bigs        []bigReq
	terminates  []uint8
	setups      []uint16
	pathRemoves []uint16
}

func (h *fakeHw) CreateAnnouncement(req CreateAnnouncementReq) {
	h.ops = append(h.ops, "create")
	h.creates = append(h.creates, req)
}

func (h *fakeHw) EnableAnnouncement(sid uint8, enable bool) {
	if enable {
		h.ops = append(h.ops, "pa_enable")
	} else {
		h.ops = append(h.ops, "pa_disable")
	}
	h.enables = append(h.enables, enableReq{sid, enable})
}

func (h *fakeHw) UpdateAnnouncement(sid uint8, req UpdateAnnouncementReq) {
	h.ops = append(h.ops, "update")
	h.updates = append(h.updates, req)
}

func (h *fakeHw) RemoveAnnouncement(sid uint8) {
	h.ops = append(h.ops, "remove")
	h.removes = append(h.removes, sid)
}

func (h *fakeHw) RequestOwnAddress(sid uint8) {
	h.ops = append(h.ops, "own_addr")
	h.addrReqs = append(h.addrReqs, sid)
}

func (h *fakeHw) CreateBig(bigHandle uint8, params BigParams) {
	h.ops = append(h.ops, "create_big")
	h.bigs = append(h.bigs, bigReq{bigHandle, params})
}

func (h *fakeHw) TerminateBig(bigHandle uint8, reason uint8) {
	h.ops = append(h.ops, "terminate_big")
	h.terminates = append(h.terminates, bigHandle)
}

func (h *fakeHw) SetupIsoDataPath(connHandle uint16, params IsoDataPathParams) {
	h.ops = append(h.ops, "setup_path")
	h.setups = append(h.setups, connHandle)
}

func (h *fakeHw) RemoveIsoDataPath(connHandle uint16, direction uint8) {
	h.ops = append(h.ops, "remove_path")
	h.pathRemoves = append(h.pathRemoves, connHandle)
}

func (h *fakeHw) count(op string) int {
	n := 0
	for _, o := range h.ops {
		if o == op {
			n++
		}
	}
	return n
}

type stateEvt struct {
	state State
	data  interface{}
}

type fakeOwner struct {
	createStatus []bool
	events       []stateEvt
	destroyed    []uint32
	addrs        []bcdefs.BleAddr
	bigsCreated  [][]uint16
	updated      int

	// Runs on every state change.
	check func(state State)
}

func (o *fakeOwner) OnStateMachineCreateStatus(id uint32, initialized bool) {
	o.createStatus = append(o.createStatus, initialized)
}

func (o *fakeOwner) OnStateMachineDestroyed(id uint32) {
	o.destroyed = append(o.destroyed, id)
}

func (o *fakeOwner) OnStateMachineEvent(id uint32, state State,
	data interface{}) {

	o.events = append(o.events, stateEvt{state, data})
	if o.check != nil {
		o.check(state)
	}
}

func (o *fakeOwner) OnOwnAddressResponse(id uint32,
	addrType bcdefs.BleAddrType, addr bcdefs.BleAddr) {

	o.addrs = append(o.addrs, addr)
}

func (o *fakeOwner) OnBigCreated(handles []uint16) {
	o.bigsCreated = append(o.bigsCreated, handles)
}

func (o *fakeOwner) OnAnnouncementUpdated(id uint32) {
	o.updated++
}

func (o *fakeOwner) states() []State {
	ss := make([]State, len(o.events))
	for i, e := range o.events {
		ss[i] = e.state
	}
	return ss
}

const testSid uint8 = 3

func testConfig(t *testing.T) StateMachineConfig {
	cfg, err := announce.DefaultConfiguration(48000, 100)
	require.NoError(t, err)

	md, err := announce.Metadata(announce.CONTEXT_MEDIA, "eng")
	require.NoError(t, err)

	return StateMachineConfig{
		IsPublic:      true,
		BroadcastId:   0x123456,
		BroadcastName: "Test",
		StreamingPhy:  bcdefs.PHY_LE_2M,
		Config:        cfg,
		PublicAnnouncement: announce.PublicBroadcastAnnouncementData{
			Features: announce.PBP_FEATURE_HIGH_QUALITY,
			Metadata: md,
		},
		Announcement: announce.BasicAudioAnnouncementFromConfig(cfg, 40000, md),
	}
}

type harness struct {
	t     *testing.T
	ctx   *Context
	m     *BroadcastStateMachine
	hw    *fakeHw
	owner *fakeOwner
}

func newHarness(t *testing.T) *harness {
	return newHarnessCfg(t, testConfig(t))
}

func newHarnessCfg(t *testing.T, cfg StateMachineConfig) *harness {
	hw := &fakeHw{}
	owner := &fakeOwner{}

	ctx, err := NewContext(owner, hw, hw)
	require.NoError(t, err)

	m, err := ctx.CreateInstance(cfg)
	require.NoError(t, err)

	owner.check = func(state State) {
		checkBigConfigInvariant(t, m)
	}

	return &harness{
		t:     t,
		ctx:   ctx,
		m:     m,
		hw:    hw,
		owner: owner,
	}
}

// A BIG configuration exists only while a BIG may exist, and always while
// streaming.
func checkBigConfigInvariant(t *testing.T, m *BroadcastStateMachine) {
	switch m.State() {
	case STATE_ENABLING, STATE_DISABLING:
	case STATE_STREAMING:
		assert.NotNil(t, m.BigConfig(), "streaming without a BIG config")
	default:
		assert.Nil(t, m.BigConfig(), "BIG config present in state %s",
			m.State())
	}
}

func (h *harness) createBigEvt(status uint8, handles ...uint16) []byte {
	evt := &CreateBigCompleteEvt{
		Status:      status,
		BigHandle:   h.m.BigHandle(),
		Phy:         bcdefs.PHY_LE_2M,
		Nse:         5,
		Bn:          1,
		Irc:         5,
		MaxPdu:      100,
		IsoInterval: 8,
		ConnHandles: handles,
	}
	return evt.Bytes()
}

func (h *harness) terminateBigEvt() []byte {
	evt := &TerminateBigCompleteEvt{
		BigHandle: h.m.BigHandle(),
		Reason:    bcdefs.HCI_ERR_CONN_TERM_LOCAL,
	}
	return evt.Bytes()
}

// Drives the machine to CONFIGURED.
func (h *harness) configure() {
	require.True(h.t, h.m.Initialize())
	require.Equal(h.t, STATE_CONFIGURING, h.m.State())

	h.m.OnCreateAnnouncement(testSid, -20, bcdefs.HCI_SUCCESS)
	require.Equal(h.t, STATE_CONFIGURED, h.m.State())
}

// Drives the machine from CONFIGURED to STREAMING with the given handles.
func (h *harness) stream(handles ...uint16) {
	h.m.ProcessMessage(MSG_START)
	require.Equal(h.t, STATE_ENABLING, h.m.State())

	h.m.OnEnableAnnouncement(true, bcdefs.HCI_SUCCESS)
	h.m.HandleHciEvent(HCI_EVT_LE_CREATE_BIG_COMPLETE,
		h.createBigEvt(bcdefs.HCI_SUCCESS, handles...))
	for _, ch := range handles {
		h.m.OnSetupIsoDataPath(bcdefs.HCI_SUCCESS, ch)
	}

	require.Equal(h.t, STATE_STREAMING, h.m.State())
}

// Completes a DISABLING transition for the given handles.
func (h *harness) disable(handles ...uint16) {
	require.Equal(h.t, STATE_DISABLING, h.m.State())
	for _, ch := range handles {
		h.m.OnRemoveIsoDataPath(bcdefs.HCI_SUCCESS, ch)
	}
	h.m.HandleHciEvent(HCI_EVT_LE_TERMINATE_BIG_COMPLETE, h.terminateBigEvt())
}

// Completes a STOPPING transition.
func (h *harness) finishStop() {
	require.Equal(h.t, STATE_STOPPING, h.m.State())
	if h.hw.count("pa_disable") > 0 {
		h.m.OnEnableAnnouncement(false, bcdefs.HCI_SUCCESS)
	}
	h.m.OnRemoveAnnouncement(bcdefs.HCI_SUCCESS)
	require.Equal(h.t, STATE_STOPPED, h.m.State())
}
