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

package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mynewt.apache.org/leabcast/bcast/announce"
	"mynewt.apache.org/leabcast/bcast/bcdefs"
	"mynewt.apache.org/leabcast/bcast/bcutil"
	bc "mynewt.apache.org/leabcast/bcast/broadcaster"
	"mynewt.apache.org/leabcast/bcast/task"
)

type recorder struct {
	t *testing.T
	m *bc.BroadcastStateMachine

	mtx     sync.Mutex
	states  []bc.State
	creates []bool
	bigs    [][]uint16
	updated int
	addrs   []bcdefs.BleAddr
}

func (r *recorder) OnStateMachineCreateStatus(id uint32, initialized bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.creates = append(r.creates, initialized)
}

func (r *recorder) OnStateMachineDestroyed(id uint32) {}

func (r *recorder) OnStateMachineEvent(id uint32, state bc.State,
	data interface{}) {

	r.mtx.Lock()
	r.states = append(r.states, state)
	r.mtx.Unlock()

	if r.m == nil || id != uint32(r.m.BroadcastId()) {
		return
	}

	switch state {
	case bc.STATE_ENABLING, bc.STATE_DISABLING:
	case bc.STATE_STREAMING:
		assert.NotNil(r.t, r.m.BigConfig())
		_, ok := data.(*bc.BigConfig)
		assert.True(r.t, ok)
	default:
		assert.Nil(r.t, r.m.BigConfig(), "state %s", state)
	}
}

func (r *recorder) OnOwnAddressResponse(id uint32, addrType bcdefs.BleAddrType,
	addr bcdefs.BleAddr) {

	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.addrs = append(r.addrs, addr)
}

func (r *recorder) OnBigCreated(handles []uint16) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.bigs = append(r.bigs, handles)
}

func (r *recorder) OnAnnouncementUpdated(id uint32) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.updated++
}

type fixture struct {
	t     *testing.T
	tq    *task.TaskQueue
	radio *Radio
	bctx  *bc.Context
	rec   *recorder
	m     *bc.BroadcastStateMachine
}

func testConfig(t *testing.T, id announce.BroadcastId) bc.StateMachineConfig {
	cfg, err := announce.DefaultConfiguration(48000, 100)
	require.NoError(t, err)

	md, err := announce.Metadata(announce.CONTEXT_MEDIA, "")
	require.NoError(t, err)

	return bc.StateMachineConfig{
		IsPublic:      true,
		BroadcastId:   id,
		BroadcastName: "Sim",
		StreamingPhy:  bcdefs.PHY_LE_2M,
		Config:        cfg,
		PublicAnnouncement: announce.PublicBroadcastAnnouncementData{
			Features: announce.PBP_FEATURE_HIGH_QUALITY,
			Metadata: md,
		},
		Announcement: announce.BasicAudioAnnouncementFromConfig(cfg, 40000, md),
	}
}

func newFixture(t *testing.T) *fixture {
	tq := task.NewTaskQueue("sim-test")
	require.NoError(t, tq.Start(16))
	t.Cleanup(func() { tq.Stop(fmt.Errorf("test done")) })

	f := &fixture{
		t:     t,
		tq:    &tq,
		radio: NewRadio(&tq),
		rec:   &recorder{t: t},
	}

	var err error
	f.bctx, err = bc.NewContext(f.rec, f.radio, f.radio)
	require.NoError(t, err)
	f.radio.Bind(f.bctx)

	f.m, err = f.bctx.CreateInstance(testConfig(t, 0x00beef))
	require.NoError(t, err)
	f.rec.m = f.m

	return f
}

// Runs fn on the queue and waits for every resulting completion.
func (f *fixture) do(fn func(m *bc.BroadcastStateMachine)) {
	require.NoError(f.t, f.tq.Run(func() error {
		fn(f.m)
		return nil
	}))
	require.NoError(f.t, f.tq.Flush())
}

func (f *fixture) send(msg bc.Message) bc.State {
	var state bc.State
	f.do(func(m *bc.BroadcastStateMachine) { m.ProcessMessage(msg) })
	f.do(func(m *bc.BroadcastStateMachine) { state = m.State() })
	return state
}

func (f *fixture) initialize() bc.State {
	var state bc.State
	f.do(func(m *bc.BroadcastStateMachine) { m.Initialize() })
	f.do(func(m *bc.BroadcastStateMachine) { state = m.State() })
	return state
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, bc.STATE_CONFIGURED, f.initialize())
	sid := f.m.AdvertisingSid()
	assert.Equal(t, 1, f.radio.NumSets())
	assert.True(t, f.radio.PeriodicEnabled(sid))
	assert.Equal(t, AddressForSid(sid), f.m.OwnAddress())
	assert.Equal(t, []bool{true}, f.rec.creates)

	require.Equal(t, bc.STATE_STREAMING, f.send(bc.MSG_START))
	assert.Equal(t, 1, f.radio.NumBigs())
	assert.Equal(t, []uint16{CONN_HANDLE_BASE, CONN_HANDLE_BASE + 1},
		f.radio.ActiveDataPaths())
	require.Len(t, f.rec.bigs, 1)
	assert.Len(t, f.rec.bigs[0], 2)

	cfg := f.m.BigConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, uint8(5), cfg.Nse)
	assert.Equal(t, uint16(8), cfg.IsoInterval)
	assert.Equal(t, uint32(60000), cfg.TransportLatencyBig)

	require.Equal(t, bc.STATE_CONFIGURED, f.send(bc.MSG_SUSPEND))
	assert.Equal(t, 0, f.radio.NumBigs())
	assert.Empty(t, f.radio.ActiveDataPaths())
	assert.True(t, f.radio.PeriodicEnabled(sid))

	require.Equal(t, bc.STATE_STREAMING, f.send(bc.MSG_START))
	require.Equal(t, bc.STATE_STOPPED, f.send(bc.MSG_STOP))
	assert.Equal(t, 0, f.radio.NumSets())
	assert.Equal(t, 0, f.radio.NumBigs())
	assert.Empty(t, f.radio.ActiveDataPaths())
	assert.Equal(t, bc.ADV_SID_UNDEFINED, f.m.AdvertisingSid())

	assert.Equal(t, 2, f.radio.Count(REQ_CREATE_BIG))
	assert.Equal(t, 2, f.radio.Count(REQ_TERMINATE_BIG))
	assert.Equal(t, 1, f.radio.Count(REQ_DISABLE_ANNOUNCEMENT))
	assert.Equal(t, 1, f.radio.Count(REQ_REMOVE_ANNOUNCEMENT))
}

func TestRequestOrder(t *testing.T) {
	f := newFixture(t)
	f.initialize()
	f.radio.ClearRequests()

	f.send(bc.MSG_START)

	ops := []RequestOp{}
	for _, r := range f.radio.Requests() {
		ops = append(ops, r.Op)
	}
	assert.Equal(t, []RequestOp{
		REQ_ENABLE_ANNOUNCEMENT,
		REQ_CREATE_BIG,
		REQ_SETUP_DATA_PATH,
		REQ_SETUP_DATA_PATH,
	}, ops)
}

func TestCreateAnnouncementFault(t *testing.T) {
	f := newFixture(t)
	f.radio.SetFaults(Faults{
		CreateAnnouncementStatus: bcdefs.HCI_ERR_LIMIT_REACHED,
	})

	assert.Equal(t, bc.STATE_STOPPED, f.initialize())
	assert.Equal(t, []bool{false}, f.rec.creates)
	assert.Equal(t, 0, f.radio.NumSets())
}

func TestCreateBigFault(t *testing.T) {
	f := newFixture(t)
	f.initialize()

	f.radio.SetFaults(Faults{CreateBigStatus: bcdefs.HCI_ERR_MEM_CAPACITY})
	assert.Equal(t, bc.STATE_CONFIGURED, f.send(bc.MSG_START))
	assert.Equal(t, 0, f.radio.NumBigs())
	assert.Equal(t, 0, f.radio.Count(REQ_SETUP_DATA_PATH))

	f.radio.SetFaults(Faults{})
	assert.Equal(t, bc.STATE_STREAMING, f.send(bc.MSG_START))
}

func TestFailuresAreHostErrors(t *testing.T) {
	f := newFixture(t)
	f.initialize()
	f.send(bc.MSG_START)
	f.send(bc.MSG_SUSPEND)
	assert.Empty(t, f.radio.Failures(0))

	from := f.radio.NumRequests()
	f.radio.SetFaults(Faults{CreateBigStatus: bcdefs.HCI_ERR_MEM_CAPACITY})
	f.send(bc.MSG_START)

	errs := f.radio.Failures(from)
	require.Len(t, errs, 1)
	require.True(t, bcutil.IsHost(errs[0]))
	assert.Equal(t, bcdefs.HCI_ERR_MEM_CAPACITY, bcutil.ToHost(errs[0]).Status)
	assert.Contains(t, errs[0].Error(), "create_big")

	assert.Empty(t, f.radio.Failures(f.radio.NumRequests()))
}

func TestDataPathFaultLeaksNothing(t *testing.T) {
	for bis := 1; bis <= 2; bis++ {
		f := newFixture(t)
		f.initialize()

		f.radio.SetFaults(Faults{DataPathFailBis: bis})
		assert.Equal(t, bc.STATE_CONFIGURED, f.send(bc.MSG_START))
		assert.Empty(t, f.radio.ActiveDataPaths(), "bis %d", bis)
		assert.Equal(t, 0, f.radio.NumBigs())
		assert.Equal(t, bis-1, f.radio.Count(REQ_REMOVE_DATA_PATH))
		assert.Nil(t, f.m.BigConfig())
	}
}

func TestAnnouncementUpdates(t *testing.T) {
	f := newFixture(t)

	// Cached while stopped.
	f.do(func(m *bc.BroadcastStateMachine) {
		m.UpdatePublicBroadcastAnnouncement(uint32(m.BroadcastId()), "Early",
			m.PublicBroadcastAnnouncement())
	})
	assert.Equal(t, 0, f.radio.Count(REQ_UPDATE_ANNOUNCEMENT))

	f.initialize()
	adv, _, err := f.radio.Payloads(f.m.AdvertisingSid())
	require.NoError(t, err)
	assert.Equal(t, []byte("Early"),
		announce.Packet(adv).Field(bcdefs.AD_TYPE_BROADCAST_NAME))

	f.send(bc.MSG_START)
	f.do(func(m *bc.BroadcastStateMachine) {
		m.UpdatePublicBroadcastAnnouncement(uint32(m.BroadcastId()), "Late",
			m.PublicBroadcastAnnouncement())
	})
	assert.Equal(t, 1, f.radio.Count(REQ_UPDATE_ANNOUNCEMENT))
	assert.Equal(t, 1, f.rec.updated)

	adv, _, err = f.radio.Payloads(f.m.AdvertisingSid())
	require.NoError(t, err)
	assert.Equal(t, []byte("Late"),
		announce.Packet(adv).Field(bcdefs.AD_TYPE_BROADCAST_NAME))

	f.radio.SetFaults(Faults{UpdateStatus: bcdefs.HCI_ERR_UNSPECIFIED})
	f.do(func(m *bc.BroadcastStateMachine) {
		m.UpdateBroadcastAnnouncement(m.BroadcastAnnouncement())
	})
	assert.Equal(t, 1, f.rec.updated)
}

func TestTeardownFaultsStillStop(t *testing.T) {
	f := newFixture(t)
	f.initialize()
	f.send(bc.MSG_START)

	f.radio.SetFaults(Faults{
		DisableStatus: bcdefs.HCI_ERR_UNSPECIFIED,
	})
	assert.Equal(t, bc.STATE_STOPPED, f.send(bc.MSG_STOP))
}

func TestMultipleBroadcasts(t *testing.T) {
	f := newFixture(t)

	var m2 *bc.BroadcastStateMachine
	var err error
	m2, err = f.bctx.CreateInstance(testConfig(t, 0x00cafe))
	require.NoError(t, err)

	f.initialize()
	f.send(bc.MSG_START)

	f.do(func(*bc.BroadcastStateMachine) { m2.Initialize() })
	f.do(func(*bc.BroadcastStateMachine) { m2.ProcessMessage(bc.MSG_START) })

	assert.Equal(t, bc.STATE_STREAMING, f.m.State())
	assert.Equal(t, bc.STATE_STREAMING, m2.State())
	assert.NotEqual(t, f.m.AdvertisingSid(), m2.AdvertisingSid())
	assert.NotEqual(t, f.m.BigHandle(), m2.BigHandle())
	assert.Equal(t, 2, f.radio.NumBigs())
	assert.Len(t, f.radio.ActiveDataPaths(), 4)

	f.send(bc.MSG_STOP)
	assert.Equal(t, bc.STATE_STREAMING, m2.State())
	assert.Len(t, f.radio.ActiveDataPaths(), 2)
}

// Delivers owner messages at random points while completions are in flight.
func TestRandomMessages(t *testing.T) {
	msgs := []bc.Message{bc.MSG_START, bc.MSG_SUSPEND, bc.MSG_STOP}

	for seed := int64(1); seed <= 20; seed++ {
		f := newFixture(t)
		rng := rand.New(rand.NewSource(seed))

		for i := 0; i < 200; i++ {
			switch rng.Intn(10) {
			case 0:
				f.radio.SetFaults(Faults{DataPathFailBis: 1 + rng.Intn(2)})
			case 1:
				f.radio.SetFaults(Faults{})
			case 2:
				require.NoError(t, f.tq.Flush())
			}

			msg := msgs[rng.Intn(len(msgs))]
			require.NoError(t, f.tq.Post(func() { f.m.ProcessMessage(msg) }))
		}

		f.radio.SetFaults(Faults{})
		require.NoError(t, f.tq.Flush())
		assert.Equal(t, bc.STATE_STOPPED, f.send(bc.MSG_STOP), "seed %d", seed)
		assert.Equal(t, 0, f.radio.NumSets(), "seed %d", seed)
		assert.Equal(t, 0, f.radio.NumBigs(), "seed %d", seed)
		assert.Empty(t, f.radio.ActiveDataPaths(), "seed %d", seed)
	}
}
