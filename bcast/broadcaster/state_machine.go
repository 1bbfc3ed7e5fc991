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

	log "github.com/sirupsen/logrus"

	"mynewt.apache.org/leabcast/bcast/announce"
	"mynewt.apache.org/leabcast/bcast/bcdefs"
	"mynewt.apache.org/leabcast/bcast/bcutil"
	"mynewt.apache.org/leabcast/bcast/fsm"
)

type OwnAddressFn func(addrType bcdefs.BleAddrType, addr bcdefs.BleAddr)

// Owner request received while a transition was in flight.  Honoured once the
// transition resolves.
type intent int

const (
	INTENT_NONE    intent = 0
	INTENT_START   intent = 1
	INTENT_SUSPEND intent = 2
	INTENT_STOP    intent = 3
)

var intentStringMap = map[intent]string{
	INTENT_NONE:    "none",
	INTENT_START:   "start",
	INTENT_SUSPEND: "suspend",
	INTENT_STOP:    "stop",
}

func (i intent) String() string {
	return intentStringMap[i]
}

// Outstanding completions of an ENABLING transition.  Data paths are set up
// one at a time, in BIG connection handle order.
type enableOp struct {
	paPending  bool
	bigPending bool
	bigCreated bool

	pathQueue   []uint16
	pathPending bool
	pathHandle  uint16
	pathsUp     []uint16

	failed bool
}

func (op *enableOp) pending() bool {
	return op.paPending || op.bigPending || op.pathPending
}

// Outstanding completions of a DISABLING transition.
type disableOp struct {
	pathQueue   []uint16
	pathPending bool
	pathHandle  uint16
	terminating bool
}

// Outstanding completions of a STOPPING transition.
type stopOp struct {
	paDisablePending bool
	removePending    bool
}

// BroadcastStateMachine drives one broadcast source through advertising set
// creation, BIG creation, and ISO data path setup, and back again.
//
// The machine holds no lock.  Every method must be called from the single
// processing context that also delivers the hardware completions.
type BroadcastStateMachine struct {
	sm        fsm.Bounded
	ctx       *Context
	cfg       StateMachineConfig
	bigHandle uint8

	advSid    uint8
	txPower   int8
	paEnabled bool
	muted     bool

	addrType     bcdefs.BleAddrType
	addr         bcdefs.BleAddr
	addrCbs      []OwnAddressFn
	addrRequests int

	bigConfig *BigConfig
	enable    *enableOp
	disable   *disableOp
	stop      *stopOp
	intent    intent

	announcementDirty bool
	updatesPending    int
}

func newBroadcastStateMachine(ctx *Context, cfg StateMachineConfig,
	bigHandle uint8) *BroadcastStateMachine {

	return &BroadcastStateMachine{
		sm:        fsm.NewBounded(STATE_COUNT),
		ctx:       ctx,
		cfg:       cfg.clone(),
		bigHandle: bigHandle,
		advSid:    ADV_SID_UNDEFINED,
	}
}

func (m *BroadcastStateMachine) String() string {
	return fmt.Sprintf("broadcast_id=%s state=%s sid=0x%02x "+
		"big_handle=0x%02x muted=%t big=%s",
		m.cfg.BroadcastId, m.State(), m.advSid, m.bigHandle, m.muted,
		m.bigConfig)
}

func (m *BroadcastStateMachine) id() uint32 {
	return uint32(m.cfg.BroadcastId)
}

func (m *BroadcastStateMachine) State() State {
	return State(m.sm.State())
}

func (m *BroadcastStateMachine) setState(s State, data interface{}) {
	prev := m.State()
	m.sm.SetState(uint8(s))

	log.Debugf("Broadcast %s state change: %s --> %s",
		m.cfg.BroadcastId, prev, s)

	m.ctx.cbs.OnStateMachineEvent(m.id(), s, data)
}

func (m *BroadcastStateMachine) stale(what string) {
	log.Debugf("Broadcast %s: discarding stale %s; state=%s",
		m.cfg.BroadcastId, what, m.State())
}

func (m *BroadcastStateMachine) BroadcastId() announce.BroadcastId {
	return m.cfg.BroadcastId
}

func (m *BroadcastStateMachine) AdvertisingSid() uint8 {
	return m.advSid
}

func (m *BroadcastStateMachine) BigHandle() uint8 {
	return m.bigHandle
}

func (m *BroadcastStateMachine) PaInterval() uint16 {
	return PA_INTERVAL_MAX
}

func (m *BroadcastStateMachine) TxPower() int8 {
	return m.txPower
}

// Returns a copy of the current BIG configuration, or nil if no BIG exists.
func (m *BroadcastStateMachine) BigConfig() *BigConfig {
	return m.bigConfig.Copy()
}

func (m *BroadcastStateMachine) CodecConfig() []announce.BroadcastSubgroupCodecConfig {
	return m.cfg.Config.Subgroups
}

func (m *BroadcastStateMachine) BroadcastConfig() announce.BroadcastConfiguration {
	return m.cfg.Config
}

func (m *BroadcastStateMachine) StateMachineConfig() StateMachineConfig {
	return m.cfg.clone()
}

func (m *BroadcastStateMachine) BroadcastCode() *announce.BroadcastCode {
	if m.cfg.BroadcastCode == nil {
		return nil
	}

	code := *m.cfg.BroadcastCode
	return &code
}

func (m *BroadcastStateMachine) IsPublicBroadcast() bool {
	return m.cfg.IsPublic
}

func (m *BroadcastStateMachine) BroadcastName() string {
	return m.cfg.BroadcastName
}

func (m *BroadcastStateMachine) BroadcastAnnouncement() announce.BasicAudioAnnouncementData {
	return m.cfg.Announcement.Clone()
}

func (m *BroadcastStateMachine) PublicBroadcastAnnouncement() announce.PublicBroadcastAnnouncementData {
	return m.cfg.PublicAnnouncement.Clone()
}

func (m *BroadcastStateMachine) OwnAddress() bcdefs.BleAddr {
	return m.addr
}

func (m *BroadcastStateMachine) OwnAddressType() bcdefs.BleAddrType {
	return m.addrType
}

func (m *BroadcastStateMachine) SetMuted(muted bool) {
	m.muted = muted
}

func (m *BroadcastStateMachine) IsMuted() bool {
	return m.muted
}

// Initialize requests creation of the advertising set.  It reports whether
// the request was issued.
func (m *BroadcastStateMachine) Initialize() bool {
	if m.State() != STATE_STOPPED {
		log.Warnf("Broadcast %s: cannot initialize in state %s",
			m.cfg.BroadcastId, m.State())
		return false
	}

	return m.createAnnouncement()
}

func (m *BroadcastStateMachine) ProcessMessage(msg Message) {
	log.Debugf("Broadcast %s: message %s; state=%s intent=%s",
		m.cfg.BroadcastId, msg, m.State(), m.intent)

	switch m.State() {
	case STATE_STOPPED:
		if msg == MSG_START {
			m.createAnnouncement()
			return
		}

	case STATE_CONFIGURING:
		if msg == MSG_STOP {
			m.intent = INTENT_STOP
			return
		}

	case STATE_CONFIGURED:
		switch msg {
		case MSG_START:
			m.enableBroadcast()
			return
		case MSG_STOP:
			m.stopAnnouncement()
			return
		}

	case STATE_ENABLING:
		switch msg {
		case MSG_SUSPEND:
			if m.intent != INTENT_STOP {
				m.intent = INTENT_SUSPEND
			}
			return
		case MSG_STOP:
			m.intent = INTENT_STOP
			return
		}

	case STATE_STREAMING:
		switch msg {
		case MSG_SUSPEND:
			m.disableBroadcast(m.bigConfig.ConnectionHandles)
			return
		case MSG_STOP:
			m.intent = INTENT_STOP
			m.disableBroadcast(m.bigConfig.ConnectionHandles)
			return
		}

	case STATE_DISABLING:
		switch msg {
		case MSG_START:
			if m.intent != INTENT_STOP {
				m.intent = INTENT_START
			}
			return
		case MSG_SUSPEND:
			if m.intent == INTENT_START {
				m.intent = INTENT_NONE
			}
			return
		case MSG_STOP:
			m.intent = INTENT_STOP
			return
		}
	}

	log.Debugf("Broadcast %s: ignoring message %s in state %s",
		m.cfg.BroadcastId, msg, m.State())
}

func (m *BroadcastStateMachine) buildAdvertisingData() ([]byte, error) {
	return announce.AdvertisingData(m.cfg.BroadcastId, m.cfg.IsPublic,
		m.cfg.BroadcastName, m.cfg.PublicAnnouncement,
		m.cfg.BroadcastCode != nil)
}

func (m *BroadcastStateMachine) buildPeriodicData() ([]byte, error) {
	return announce.PeriodicAdvertisingData(m.cfg.Announcement)
}

func (m *BroadcastStateMachine) advertisingParams() AdvertisingParams {
	return AdvertisingParams{
		IntervalMin:    ADV_INTERVAL_MIN,
		IntervalMax:    ADV_INTERVAL_MAX,
		OwnAddrType:    BROADCAST_ADVERTISING_TYPE,
		PrimaryPhy:     bcdefs.PHY_LE_1M,
		SecondaryPhy:   m.cfg.StreamingPhy,
		TxPower:        ADV_TX_POWER_DFLT,
		IncludeTxPower: true,
		ChannelMap:     0x07,
	}
}

// STOPPED --> CONFIGURING
func (m *BroadcastStateMachine) createAnnouncement() bool {
	fail := func(err error) bool {
		log.Warnf("Broadcast %s: failed to build announcement: %s",
			m.cfg.BroadcastId, err.Error())
		m.ctx.cbs.OnStateMachineCreateStatus(m.id(), false)
		return false
	}

	advData, err := m.buildAdvertisingData()
	if err != nil {
		return fail(err)
	}
	perData, err := m.buildPeriodicData()
	if err != nil {
		return fail(err)
	}

	m.intent = INTENT_NONE
	// The request carries the cached payloads.
	m.announcementDirty = false
	m.setState(STATE_CONFIGURING, nil)

	m.ctx.adv.CreateAnnouncement(CreateAnnouncementReq{
		BroadcastId: m.cfg.BroadcastId,
		RegId:       LE_AUDIO_BROADCAST_REG_ID,
		AdvParams:   m.advertisingParams(),
		AdvData:     advData,
		PeriodicParams: PeriodicAdvertisingParams{
			Enable:      true,
			IntervalMin: PA_INTERVAL_MIN,
			IntervalMax: PA_INTERVAL_MAX,
		},
		PeriodicData: perData,
	})

	return true
}

func (m *BroadcastStateMachine) OnCreateAnnouncement(sid uint8, txPower int8,
	status uint8) {

	if m.State() != STATE_CONFIGURING {
		m.stale("create announcement completion")
		return
	}

	if status != bcdefs.HCI_SUCCESS || sid == ADV_SID_UNDEFINED {
		log.Warnf("Broadcast %s: advertising set creation failed; "+
			"sid=0x%02x status=%s", m.cfg.BroadcastId, sid,
			bcdefs.HciStatusToString(status))

		m.intent = INTENT_NONE
		m.announcementDirty = false
		m.setState(STATE_STOPPED, nil)
		m.ctx.cbs.OnStateMachineCreateStatus(m.id(), false)
		return
	}

	m.advSid = sid
	m.txPower = txPower
	m.paEnabled = true

	m.setState(STATE_CONFIGURED, nil)
	m.ctx.cbs.OnStateMachineCreateStatus(m.id(), true)

	if m.intent == INTENT_STOP {
		m.intent = INTENT_NONE
		m.announcementDirty = false
		m.stopAnnouncement()
		return
	}

	m.RequestOwnAddress()

	if m.announcementDirty {
		m.flushAnnouncement()
	}
}

// CONFIGURED --> ENABLING
func (m *BroadcastStateMachine) enableBroadcast() {
	m.enable = &enableOp{
		paPending:  true,
		bigPending: true,
	}
	m.intent = INTENT_NONE
	m.setState(STATE_ENABLING, nil)

	m.ctx.adv.EnableAnnouncement(m.advSid, true)
	m.ctx.ctlr.CreateBig(m.bigHandle, m.bigParams())
}

func (m *BroadcastStateMachine) bigParams() BigParams {
	c := &m.cfg.Config

	p := BigParams{
		AdvHandle:             m.advSid,
		NumBis:                uint8(c.NumBises()),
		SduIntervalUs:         c.SduIntervalUs,
		MaxSdu:                c.MaxSduOctets,
		MaxTransportLatencyMs: c.Qos.MaxTransportLatencyMs,
		Rtn:                   c.Qos.Rtn,
		Phy:                   m.cfg.StreamingPhy,
		Packing:               c.Packing,
		Framing:               c.Framing,
	}
	if m.cfg.BroadcastCode != nil {
		p.Encryption = true
		p.BroadcastCode = *m.cfg.BroadcastCode
	}

	return p
}

func (m *BroadcastStateMachine) isoDataPathParams() IsoDataPathParams {
	dp := &m.cfg.Config.DataPath

	return IsoDataPathParams{
		Direction:         ISO_DATA_PATH_DIR_INPUT,
		DataPathId:        dp.IsoDataPathId,
		CodecId:           dp.CodecId,
		ControllerDelayUs: dp.ControllerDelayUs,
		CodecConfig:       bcutil.CopyBytes(dp.CodecConfig),
	}
}

func (m *BroadcastStateMachine) OnEnableAnnouncement(enable bool, status uint8) {
	if enable {
		if m.State() != STATE_ENABLING || m.enable == nil ||
			!m.enable.paPending {

			m.stale("periodic advertising enable completion")
			return
		}

		m.enable.paPending = false
		if status != bcdefs.HCI_SUCCESS {
			log.Warnf("Broadcast %s: periodic advertising enable failed; "+
				"status=%s", m.cfg.BroadcastId,
				bcdefs.HciStatusToString(status))
			m.enable.failed = true
		} else {
			m.paEnabled = true
		}

		m.checkEnabling()
		return
	}

	if m.State() != STATE_STOPPING || m.stop == nil ||
		!m.stop.paDisablePending {

		m.stale("periodic advertising disable completion")
		return
	}

	m.stop.paDisablePending = false
	if status != bcdefs.HCI_SUCCESS {
		log.Warnf("Broadcast %s: periodic advertising disable failed; "+
			"removing advertising set anyway; status=%s",
			m.cfg.BroadcastId, bcdefs.HciStatusToString(status))
	}
	m.paEnabled = false

	m.removeAnnouncement()
}

func (m *BroadcastStateMachine) HandleHciEvent(event uint8, data []byte) {
	switch event {
	case HCI_EVT_LE_CREATE_BIG_COMPLETE:
		evt, err := ParseCreateBigCompleteEvt(data)
		if err != nil {
			log.Warnf("Broadcast %s: %s", m.cfg.BroadcastId, err.Error())
			return
		}
		if evt.BigHandle != m.bigHandle {
			m.stale("create BIG complete for foreign BIG")
			return
		}
		if m.State() != STATE_ENABLING || m.enable == nil ||
			!m.enable.bigPending {

			m.stale("create BIG complete")
			return
		}
		m.onBigCreated(evt)

	case HCI_EVT_LE_TERMINATE_BIG_COMPLETE:
		evt, err := ParseTerminateBigCompleteEvt(data)
		if err != nil {
			log.Warnf("Broadcast %s: %s", m.cfg.BroadcastId, err.Error())
			return
		}
		if evt.BigHandle != m.bigHandle {
			m.stale("terminate BIG complete for foreign BIG")
			return
		}
		if m.State() != STATE_DISABLING || m.disable == nil ||
			!m.disable.terminating {

			m.stale("terminate BIG complete")
			return
		}
		m.onBigTerminated(evt)

	default:
		log.Debugf("Broadcast %s: unhandled HCI event 0x%02x",
			m.cfg.BroadcastId, event)
	}
}

func (m *BroadcastStateMachine) onBigCreated(evt *CreateBigCompleteEvt) {
	op := m.enable
	op.bigPending = false

	if evt.Status != bcdefs.HCI_SUCCESS {
		log.Warnf("Broadcast %s: BIG creation failed; status=%s",
			m.cfg.BroadcastId, bcdefs.HciStatusToString(evt.Status))
		op.failed = true
		m.checkEnabling()
		return
	}

	op.bigCreated = true
	m.bigConfig = NewBigConfig(evt)

	if numBis := m.cfg.Config.NumBises(); len(evt.ConnHandles) != numBis {
		log.Warnf("Broadcast %s: BIG created with %d streams; expected %d",
			m.cfg.BroadcastId, len(evt.ConnHandles), numBis)
		op.failed = true
	}

	if op.failed || m.intent != INTENT_NONE {
		m.checkEnabling()
		return
	}

	m.ctx.cbs.OnBigCreated(bcutil.CopyHandles(evt.ConnHandles))

	op.pathQueue = bcutil.CopyHandles(evt.ConnHandles)
	m.setupNextDataPath()
}

func (m *BroadcastStateMachine) setupNextDataPath() {
	op := m.enable
	if len(op.pathQueue) == 0 {
		m.checkEnabling()
		return
	}

	op.pathHandle = op.pathQueue[0]
	op.pathQueue = op.pathQueue[1:]
	op.pathPending = true

	m.ctx.ctlr.SetupIsoDataPath(op.pathHandle, m.isoDataPathParams())
}

func (m *BroadcastStateMachine) OnSetupIsoDataPath(status uint8,
	connHandle uint16) {

	if m.State() != STATE_ENABLING || m.enable == nil ||
		!m.enable.pathPending || m.enable.pathHandle != connHandle {

		m.stale("ISO data path setup completion")
		return
	}

	op := m.enable
	op.pathPending = false

	if status != bcdefs.HCI_SUCCESS {
		log.Warnf("Broadcast %s: ISO data path setup failed; "+
			"handle=0x%04x status=%s", m.cfg.BroadcastId, connHandle,
			bcdefs.HciStatusToString(status))
		op.failed = true
		m.checkEnabling()
		return
	}

	op.pathsUp = append(op.pathsUp, connHandle)

	if op.failed || m.intent != INTENT_NONE {
		m.checkEnabling()
		return
	}

	m.setupNextDataPath()
}

// Resolves an ENABLING transition once no completions are outstanding.
func (m *BroadcastStateMachine) checkEnabling() {
	op := m.enable
	if op.pending() {
		return
	}

	if !op.failed && m.intent == INTENT_NONE {
		if len(op.pathQueue) > 0 {
			return
		}

		m.enable = nil
		m.setState(STATE_STREAMING, m.bigConfig.Copy())
		return
	}

	if op.failed {
		log.Warnf("Broadcast %s: enable failed; rolling back",
			m.cfg.BroadcastId)
	}

	m.enable = nil

	if op.bigCreated {
		// A latched SUSPEND is satisfied by the teardown itself.
		if m.intent == INTENT_SUSPEND {
			m.intent = INTENT_NONE
		}
		m.disableBroadcast(op.pathsUp)
		return
	}

	m.bigConfig = nil
	if m.intent == INTENT_STOP {
		m.intent = INTENT_NONE
		m.stopAnnouncement()
		return
	}

	m.intent = INTENT_NONE
	m.setState(STATE_CONFIGURED, nil)
}

// STREAMING or ENABLING --> DISABLING.  Removes the given data paths in order
// and then terminates the BIG.
func (m *BroadcastStateMachine) disableBroadcast(paths []uint16) {
	m.disable = &disableOp{
		pathQueue: bcutil.CopyHandles(paths),
	}
	m.setState(STATE_DISABLING, nil)

	m.removeNextDataPath()
}

func (m *BroadcastStateMachine) removeNextDataPath() {
	op := m.disable
	if len(op.pathQueue) == 0 {
		op.terminating = true
		m.ctx.ctlr.TerminateBig(m.bigHandle, bcdefs.HCI_ERR_CONN_TERM_LOCAL)
		return
	}

	op.pathHandle = op.pathQueue[0]
	op.pathQueue = op.pathQueue[1:]
	op.pathPending = true

	m.ctx.ctlr.RemoveIsoDataPath(op.pathHandle, ISO_DATA_PATH_DIR_INPUT)
}

func (m *BroadcastStateMachine) OnRemoveIsoDataPath(status uint8,
	connHandle uint16) {

	if m.State() != STATE_DISABLING || m.disable == nil ||
		!m.disable.pathPending || m.disable.pathHandle != connHandle {

		m.stale("ISO data path removal completion")
		return
	}

	m.disable.pathPending = false
	if status != bcdefs.HCI_SUCCESS {
		log.Warnf("Broadcast %s: ISO data path removal failed; "+
			"continuing teardown; handle=0x%04x status=%s",
			m.cfg.BroadcastId, connHandle, bcdefs.HciStatusToString(status))
	}

	m.removeNextDataPath()
}

// DISABLING --> CONFIGURED, STOPPING, or (for a latched START) ENABLING.
func (m *BroadcastStateMachine) onBigTerminated(evt *TerminateBigCompleteEvt) {
	log.Debugf("Broadcast %s: BIG 0x%02x terminated; reason=%s",
		m.cfg.BroadcastId, evt.BigHandle, bcdefs.HciStatusToString(evt.Reason))

	m.disable = nil
	m.bigConfig = nil

	switch m.intent {
	case INTENT_STOP:
		m.intent = INTENT_NONE
		m.stopAnnouncement()

	case INTENT_START:
		m.intent = INTENT_NONE
		m.setState(STATE_CONFIGURED, nil)
		m.enableBroadcast()

	default:
		m.intent = INTENT_NONE
		m.setState(STATE_CONFIGURED, nil)
	}
}

// CONFIGURED, ENABLING, or DISABLING --> STOPPING
func (m *BroadcastStateMachine) stopAnnouncement() {
	m.stop = &stopOp{}
	m.setState(STATE_STOPPING, nil)

	if m.paEnabled {
		m.stop.paDisablePending = true
		m.ctx.adv.EnableAnnouncement(m.advSid, false)
		return
	}

	m.removeAnnouncement()
}

func (m *BroadcastStateMachine) removeAnnouncement() {
	m.stop.removePending = true
	m.ctx.adv.RemoveAnnouncement(m.advSid)
}

func (m *BroadcastStateMachine) OnRemoveAnnouncement(status uint8) {
	if m.State() != STATE_STOPPING || m.stop == nil || !m.stop.removePending {
		m.stale("remove announcement completion")
		return
	}

	if status != bcdefs.HCI_SUCCESS {
		log.Warnf("Broadcast %s: advertising set removal failed; "+
			"status=%s", m.cfg.BroadcastId, bcdefs.HciStatusToString(status))
	}

	m.stop = nil
	m.advSid = ADV_SID_UNDEFINED
	m.paEnabled = false
	m.bigConfig = nil
	m.intent = INTENT_NONE
	m.updatesPending = 0
	m.addrRequests = 0
	m.addrCbs = nil

	m.setState(STATE_STOPPED, nil)
}

func (m *BroadcastStateMachine) transmitsAnnouncements() bool {
	switch m.State() {
	case STATE_CONFIGURED, STATE_ENABLING, STATE_STREAMING, STATE_DISABLING:
		return true
	default:
		return false
	}
}

func (m *BroadcastStateMachine) sendAnnouncementUpdate(req UpdateAnnouncementReq) {
	switch {
	case m.transmitsAnnouncements():
		m.updatesPending++
		m.ctx.adv.UpdateAnnouncement(m.advSid, req)

	case m.State() == STATE_CONFIGURING:
		m.announcementDirty = true

	default:
		log.Debugf("Broadcast %s: announcement cached; state=%s",
			m.cfg.BroadcastId, m.State())
	}
}

// Transmits both cached payloads after an update latched while configuring.
func (m *BroadcastStateMachine) flushAnnouncement() {
	m.announcementDirty = false

	advData, err := m.buildAdvertisingData()
	if err != nil {
		log.Warnf("Broadcast %s: failed to build advertising data: %s",
			m.cfg.BroadcastId, err.Error())
		return
	}
	perData, err := m.buildPeriodicData()
	if err != nil {
		log.Warnf("Broadcast %s: failed to build periodic data: %s",
			m.cfg.BroadcastId, err.Error())
		return
	}

	m.sendAnnouncementUpdate(UpdateAnnouncementReq{
		AdvData:      advData,
		PeriodicData: perData,
	})
}

func (m *BroadcastStateMachine) UpdateBroadcastAnnouncement(
	data announce.BasicAudioAnnouncementData) {

	m.cfg.Announcement = data.Clone()

	perData, err := m.buildPeriodicData()
	if err != nil {
		log.Warnf("Broadcast %s: failed to build periodic data: %s",
			m.cfg.BroadcastId, err.Error())
		return
	}

	m.sendAnnouncementUpdate(UpdateAnnouncementReq{PeriodicData: perData})
}

func (m *BroadcastStateMachine) UpdatePublicBroadcastAnnouncement(
	broadcastId uint32, name string,
	data announce.PublicBroadcastAnnouncementData) {

	if broadcastId != m.id() {
		log.Warnf("Broadcast %s: public announcement update for foreign "+
			"broadcast ID 0x%06x", m.cfg.BroadcastId, broadcastId)
		return
	}

	m.cfg.BroadcastName = name
	m.cfg.PublicAnnouncement = data.Clone()

	advData, err := m.buildAdvertisingData()
	if err != nil {
		log.Warnf("Broadcast %s: failed to build advertising data: %s",
			m.cfg.BroadcastId, err.Error())
		return
	}

	m.sendAnnouncementUpdate(UpdateAnnouncementReq{AdvData: advData})
}

func (m *BroadcastStateMachine) OnUpdateAnnouncement(status uint8) {
	if m.updatesPending == 0 {
		m.stale("announcement update completion")
		return
	}
	m.updatesPending--

	if status != bcdefs.HCI_SUCCESS {
		log.Warnf("Broadcast %s: announcement update failed; status=%s",
			m.cfg.BroadcastId, bcdefs.HciStatusToString(status))
		return
	}

	m.ctx.cbs.OnAnnouncementUpdated(m.id())
}

// RequestOwnAddress asks the advertising subsystem for the address of this
// broadcast's advertising set.  The result is cached and reported through
// OnOwnAddressResponse.
func (m *BroadcastStateMachine) RequestOwnAddress() {
	m.RequestOwnAddressCb(nil)
}

// RequestOwnAddressCb is like RequestOwnAddress, but additionally invokes cb
// with the result.
func (m *BroadcastStateMachine) RequestOwnAddressCb(cb OwnAddressFn) {
	if m.advSid == ADV_SID_UNDEFINED {
		log.Warnf("Broadcast %s: own address requested without an "+
			"advertising set", m.cfg.BroadcastId)
		return
	}

	if cb != nil {
		m.addrCbs = append(m.addrCbs, cb)
	}
	m.addrRequests++
	m.ctx.adv.RequestOwnAddress(m.advSid)
}

func (m *BroadcastStateMachine) OnOwnAddress(addrType bcdefs.BleAddrType,
	addr bcdefs.BleAddr) {

	if m.addrRequests == 0 {
		m.stale("own address response")
		return
	}
	m.addrRequests--

	m.addrType = addrType
	m.addr = addr

	cbs := m.addrCbs
	m.addrCbs = nil
	for _, cb := range cbs {
		cb(addrType, addr)
	}

	m.ctx.cbs.OnOwnAddressResponse(m.id(), addrType, addr)
}

// OwnsIsoHandle indicates whether a data path completion for the given ISO
// connection handle may belong to this machine.
func (m *BroadcastStateMachine) OwnsIsoHandle(connHandle uint16) bool {
	if m.enable != nil && m.enable.pathPending &&
		m.enable.pathHandle == connHandle {

		return true
	}
	if m.disable != nil && m.disable.pathPending &&
		m.disable.pathHandle == connHandle {

		return true
	}

	return m.bigConfig != nil && m.bigConfig.HasHandle(connHandle)
}

// Destroy releases the machine's BIG handle and broadcast ID.  It does not
// tear down hardware resources; the owner drives the machine to STOPPED
// first.
func (m *BroadcastStateMachine) Destroy() {
	if m.State() != STATE_STOPPED {
		log.Warnf("Broadcast %s: destroyed in state %s",
			m.cfg.BroadcastId, m.State())
	}

	m.ctx.release(m)
	m.ctx.cbs.OnStateMachineDestroyed(m.id())
}
