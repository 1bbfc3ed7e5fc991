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

// Package sim provides an in-memory advertising manager and controller.
// Every request completes asynchronously as a job on a task queue, in the
// order requests were issued.
package sim

import (
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	bc "mynewt.apache.org/leabcast/bcast/broadcaster"
	"mynewt.apache.org/leabcast/bcast/bcdefs"
	"mynewt.apache.org/leabcast/bcast/bcutil"
	"mynewt.apache.org/leabcast/bcast/task"
)

const CONN_HANDLE_BASE uint16 = 0x0100

// Statuses injected into the radio's completions.  The zero value injects
// nothing.
type Faults struct {
	CreateAnnouncementStatus uint8
	EnableStatus             uint8
	DisableStatus            uint8
	UpdateStatus             uint8
	RemoveStatus             uint8
	CreateBigStatus          uint8

	// 1-based index, within its BIG, of the stream whose data path setup
	// fails with DataPathStatus.  0 disables the fault.
	DataPathFailBis int
	DataPathStatus  uint8
}

type RequestOp string

const (
	REQ_CREATE_ANNOUNCEMENT  RequestOp = "create_announcement"
	REQ_ENABLE_ANNOUNCEMENT  RequestOp = "enable_announcement"
	REQ_DISABLE_ANNOUNCEMENT RequestOp = "disable_announcement"
	REQ_UPDATE_ANNOUNCEMENT  RequestOp = "update_announcement"
	REQ_REMOVE_ANNOUNCEMENT  RequestOp = "remove_announcement"
	REQ_OWN_ADDRESS          RequestOp = "own_address"
	REQ_CREATE_BIG           RequestOp = "create_big"
	REQ_TERMINATE_BIG        RequestOp = "terminate_big"
	REQ_SETUP_DATA_PATH      RequestOp = "setup_data_path"
	REQ_REMOVE_DATA_PATH     RequestOp = "remove_data_path"
)

// A request received by the radio, with the status its completion reports.
type Request struct {
	Op         RequestOp
	Sid        uint8
	BigHandle  uint8
	ConnHandle uint16
	Status     uint8
}

func (r Request) target() string {
	switch r.Op {
	case REQ_CREATE_BIG, REQ_TERMINATE_BIG:
		return fmt.Sprintf("%s big=0x%02x", r.Op, r.BigHandle)
	case REQ_SETUP_DATA_PATH, REQ_REMOVE_DATA_PATH:
		return fmt.Sprintf("%s handle=0x%04x", r.Op, r.ConnHandle)
	default:
		return fmt.Sprintf("%s sid=%d", r.Op, r.Sid)
	}
}

func (r Request) String() string {
	if r.Status == bcdefs.HCI_SUCCESS {
		return r.target()
	}
	return fmt.Sprintf("%s status=%s", r.target(),
		bcdefs.HciStatusToString(r.Status))
}

// Err returns a HostError if the request completed with a non-success
// status, nil otherwise.
func (r Request) Err() error {
	if r.Status == bcdefs.HCI_SUCCESS {
		return nil
	}
	return bcutil.FmtHostError(r.Status, "%s failed", r.target())
}

type advSet struct {
	sid       uint8
	txPower   int8
	paEnabled bool
	advData   []byte
	perData   []byte
}

type big struct {
	handle  uint8
	params  bc.BigParams
	streams []uint16
}

type Radio struct {
	tq   *task.TaskQueue
	bctx *bc.Context

	mtx        sync.Mutex
	faults     Faults
	nextSid    uint8
	nextHandle uint16
	sets       map[uint8]*advSet
	bigs       map[uint8]*big
	paths      map[uint16]struct{}
	reqs       []Request
}

func NewRadio(tq *task.TaskQueue) *Radio {
	return &Radio{
		tq:         tq,
		nextHandle: CONN_HANDLE_BASE,
		sets:       map[uint8]*advSet{},
		bigs:       map[uint8]*big{},
		paths:      map[uint16]struct{}{},
	}
}

// Bind sets the context that receives the radio's completions.  It must be
// called before the first request.
func (r *Radio) Bind(bctx *bc.Context) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.bctx = bctx
}

func (r *Radio) SetFaults(f Faults) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.faults = f
}

func (r *Radio) Faults() Faults {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.faults
}

func (r *Radio) record(req Request) {
	log.Debugf("Radio request: %s", req)
	r.reqs = append(r.reqs, req)
}

// Requests returns a copy of the request log.
func (r *Radio) Requests() []Request {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	reqs := make([]Request, len(r.reqs))
	copy(reqs, r.reqs)
	return reqs
}

// Failures returns the errors of the logged requests that completed with a
// non-success status, starting at the given log index.
func (r *Radio) Failures(from int) []error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	var errs []error
	for i := from; i < len(r.reqs); i++ {
		if err := r.reqs[i].Err(); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// NumRequests returns the length of the request log.
func (r *Radio) NumRequests() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return len(r.reqs)
}

// Count returns the number of logged requests with the given op.
func (r *Radio) Count(op RequestOp) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	n := 0
	for _, req := range r.reqs {
		if req.Op == op {
			n++
		}
	}

	return n
}

func (r *Radio) ClearRequests() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.reqs = nil
}

// ActiveDataPaths returns the connection handles with an ISO data path set
// up, in ascending order.
func (r *Radio) ActiveDataPaths() []uint16 {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	hs := make([]uint16, 0, len(r.paths))
	for h := range r.paths {
		hs = append(hs, h)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })

	return hs
}

func (r *Radio) NumBigs() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return len(r.bigs)
}

func (r *Radio) NumSets() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return len(r.sets)
}

// PeriodicEnabled reports whether the given set's periodic advertising train
// is enabled.
func (r *Radio) PeriodicEnabled(sid uint8) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	s := r.sets[sid]
	return s != nil && s.paEnabled
}

// Payloads returns copies of the advertising and periodic advertising data
// of the given set.
func (r *Radio) Payloads(sid uint8) ([]byte, []byte, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	s := r.sets[sid]
	if s == nil {
		return nil, nil, fmt.Errorf("no advertising set with sid=%d", sid)
	}

	return append([]byte{}, s.advData...), append([]byte{}, s.perData...), nil
}

// AddressForSid returns the random static address the radio assigns to an
// advertising set.
func AddressForSid(sid uint8) bcdefs.BleAddr {
	return bcdefs.BleAddr{
		Bytes: [bcdefs.BLE_ADDR_LEN]byte{0xc0, 0xde, 0x00, 0x00, 0x00, sid},
	}
}

func (r *Radio) post(what string, fn func(bctx *bc.Context)) {
	bctx := r.bctx
	if bctx == nil {
		log.Warnf("Radio not bound; dropping %s completion", what)
		return
	}

	if err := r.tq.Post(func() { fn(bctx) }); err != nil {
		log.Warnf("Dropping %s completion: %s", what, err.Error())
	}
}

func (r *Radio) CreateAnnouncement(req bc.CreateAnnouncementReq) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	status := r.faults.CreateAnnouncementStatus
	sid := bc.ADV_SID_UNDEFINED
	if status == bcdefs.HCI_SUCCESS {
		if len(r.sets) >= int(bc.ADV_SID_UNDEFINED) {
			status = bcdefs.HCI_ERR_LIMIT_REACHED
		} else {
			for {
				sid = r.nextSid
				r.nextSid = (r.nextSid + 1) % bc.ADV_SID_UNDEFINED
				if _, ok := r.sets[sid]; !ok {
					break
				}
			}

			r.sets[sid] = &advSet{
				sid:       sid,
				txPower:   req.AdvParams.TxPower,
				paEnabled: req.PeriodicParams.Enable,
				advData:   req.AdvData,
				perData:   req.PeriodicData,
			}
		}
	}

	r.record(Request{Op: REQ_CREATE_ANNOUNCEMENT, Sid: sid, Status: status})

	id := req.BroadcastId
	txPower := req.AdvParams.TxPower
	r.post("create announcement", func(bctx *bc.Context) {
		bctx.DispatchCreateAnnouncement(id, sid, txPower, status)
	})
}

func (r *Radio) EnableAnnouncement(sid uint8, enable bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	op := REQ_ENABLE_ANNOUNCEMENT
	status := r.faults.EnableStatus
	if !enable {
		op = REQ_DISABLE_ANNOUNCEMENT
		status = r.faults.DisableStatus
	}
	s := r.sets[sid]
	if s == nil {
		status = bcdefs.HCI_ERR_UNK_ADV_ID
	} else if status == bcdefs.HCI_SUCCESS {
		s.paEnabled = enable
	}
	r.record(Request{Op: op, Sid: sid, Status: status})

	r.post(string(op), func(bctx *bc.Context) {
		bctx.DispatchEnableAnnouncement(sid, enable, status)
	})
}

func (r *Radio) UpdateAnnouncement(sid uint8, req bc.UpdateAnnouncementReq) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	status := r.faults.UpdateStatus
	s := r.sets[sid]
	if s == nil {
		status = bcdefs.HCI_ERR_UNK_ADV_ID
	} else if status == bcdefs.HCI_SUCCESS {
		if req.AdvData != nil {
			s.advData = req.AdvData
		}
		if req.PeriodicData != nil {
			s.perData = req.PeriodicData
		}
	}
	r.record(Request{Op: REQ_UPDATE_ANNOUNCEMENT, Sid: sid, Status: status})

	r.post("update announcement", func(bctx *bc.Context) {
		bctx.DispatchUpdateAnnouncement(sid, status)
	})
}

func (r *Radio) RemoveAnnouncement(sid uint8) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	status := r.faults.RemoveStatus
	if _, ok := r.sets[sid]; !ok {
		status = bcdefs.HCI_ERR_UNK_ADV_ID
	} else if status == bcdefs.HCI_SUCCESS {
		delete(r.sets, sid)
	}
	r.record(Request{Op: REQ_REMOVE_ANNOUNCEMENT, Sid: sid, Status: status})

	r.post("remove announcement", func(bctx *bc.Context) {
		bctx.DispatchRemoveAnnouncement(sid, status)
	})
}

func (r *Radio) RequestOwnAddress(sid uint8) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.record(Request{Op: REQ_OWN_ADDRESS, Sid: sid})

	if _, ok := r.sets[sid]; !ok {
		log.Debugf("Radio: own address requested for unknown sid=%d", sid)
		return
	}

	addr := AddressForSid(sid)
	r.post("own address", func(bctx *bc.Context) {
		bctx.DispatchOwnAddress(sid, bcdefs.BLE_ADDR_TYPE_RANDOM, addr)
	})
}

func (r *Radio) CreateBig(bigHandle uint8, params bc.BigParams) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	evt := &bc.CreateBigCompleteEvt{
		Status:    r.faults.CreateBigStatus,
		BigHandle: bigHandle,
	}

	if _, ok := r.bigs[bigHandle]; ok {
		evt.Status = bcdefs.HCI_ERR_CMD_DISALLOWED
	} else if _, ok := r.sets[params.AdvHandle]; !ok {
		evt.Status = bcdefs.HCI_ERR_UNK_ADV_ID
	}

	if evt.Status == bcdefs.HCI_SUCCESS {
		b := &big{
			handle: bigHandle,
			params: params,
		}
		for i := 0; i < int(params.NumBis); i++ {
			b.streams = append(b.streams, r.nextHandle)
			r.nextHandle++
		}
		r.bigs[bigHandle] = b

		isoInterval := uint16(params.SduIntervalUs / 1250)
		evt.BigSyncDelay = params.SduIntervalUs * uint32(params.NumBis) / 2
		evt.TransportLatencyBig = uint32(params.MaxTransportLatencyMs) * 1000
		evt.Phy = params.Phy
		evt.Nse = params.Rtn + 1
		evt.Bn = 1
		evt.Pto = 0
		evt.Irc = params.Rtn + 1
		evt.MaxPdu = params.MaxSdu
		evt.IsoInterval = isoInterval
		evt.ConnHandles = append([]uint16{}, b.streams...)
	}

	r.record(Request{Op: REQ_CREATE_BIG, Sid: params.AdvHandle,
		BigHandle: bigHandle, Status: evt.Status})

	data := evt.Bytes()
	r.post("create BIG", func(bctx *bc.Context) {
		bctx.DispatchHciEvent(bc.HCI_EVT_LE_CREATE_BIG_COMPLETE, data)
	})
}

func (r *Radio) TerminateBig(bigHandle uint8, reason uint8) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.record(Request{Op: REQ_TERMINATE_BIG, BigHandle: bigHandle})

	b := r.bigs[bigHandle]
	if b == nil {
		log.Debugf("Radio: terminate for unknown big=0x%02x", bigHandle)
		return
	}

	for _, h := range b.streams {
		delete(r.paths, h)
	}
	delete(r.bigs, bigHandle)

	evt := &bc.TerminateBigCompleteEvt{
		BigHandle: bigHandle,
		Reason:    reason,
	}
	data := evt.Bytes()
	r.post("terminate BIG", func(bctx *bc.Context) {
		bctx.DispatchHciEvent(bc.HCI_EVT_LE_TERMINATE_BIG_COMPLETE, data)
	})
}

// Returns the 1-based index of the stream within its BIG, or 0 if no BIG
// contains it.
func (r *Radio) streamIndex(connHandle uint16) int {
	for _, b := range r.bigs {
		for i, h := range b.streams {
			if h == connHandle {
				return i + 1
			}
		}
	}

	return 0
}

func (r *Radio) SetupIsoDataPath(connHandle uint16,
	params bc.IsoDataPathParams) {

	r.mtx.Lock()
	defer r.mtx.Unlock()

	status := bcdefs.HCI_SUCCESS
	idx := r.streamIndex(connHandle)
	if idx == 0 {
		status = bcdefs.HCI_ERR_UNK_CONN_ID
	} else if _, ok := r.paths[connHandle]; ok {
		status = bcdefs.HCI_ERR_CMD_DISALLOWED
	} else if idx == r.faults.DataPathFailBis {
		status = r.faults.DataPathStatus
		if status == bcdefs.HCI_SUCCESS {
			status = bcdefs.HCI_ERR_UNSPECIFIED
		}
	}

	if status == bcdefs.HCI_SUCCESS {
		r.paths[connHandle] = struct{}{}
	}
	r.record(Request{Op: REQ_SETUP_DATA_PATH, ConnHandle: connHandle,
		Status: status})

	r.post("setup data path", func(bctx *bc.Context) {
		bctx.DispatchSetupIsoDataPath(status, connHandle)
	})
}

func (r *Radio) RemoveIsoDataPath(connHandle uint16, direction uint8) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	status := bcdefs.HCI_SUCCESS
	if _, ok := r.paths[connHandle]; !ok {
		status = bcdefs.HCI_ERR_CMD_DISALLOWED
	} else {
		delete(r.paths, connHandle)
	}
	r.record(Request{Op: REQ_REMOVE_DATA_PATH, ConnHandle: connHandle,
		Status: status})

	r.post("remove data path", func(bctx *bc.Context) {
		bctx.DispatchRemoveIsoDataPath(status, connHandle)
	})
}

var _ bc.AdvertisingManager = (*Radio)(nil)
var _ bc.Controller = (*Radio)(nil)
