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
	"mynewt.apache.org/leabcast/bcast/announce"
	"mynewt.apache.org/leabcast/bcast/bcdefs"
)

// Notifications delivered to the owner of a set of broadcast sources.  All
// methods are invoked on the processing context that drives the machines.
type Callbacks interface {
	OnStateMachineCreateStatus(broadcastId uint32, initialized bool)
	OnStateMachineDestroyed(broadcastId uint32)

	// data is a *BigConfig when entering STATE_STREAMING; nil otherwise.
	OnStateMachineEvent(broadcastId uint32, state State, data interface{})

	OnOwnAddressResponse(broadcastId uint32, addrType bcdefs.BleAddrType,
		addr bcdefs.BleAddr)
	OnBigCreated(connHandles []uint16)
	OnAnnouncementUpdated(broadcastId uint32)
}

type AdvertisingParams struct {
	IntervalMin    uint32
	IntervalMax    uint32
	OwnAddrType    uint8
	PrimaryPhy     uint8
	SecondaryPhy   uint8
	TxPower        int8
	Connectable    bool
	Scannable      bool
	IncludeTxPower bool
	ChannelMap     uint8
}

type PeriodicAdvertisingParams struct {
	Enable      bool
	IntervalMin uint16
	IntervalMax uint16
}

// Request to create an extended advertising set with an associated periodic
// advertising train.  Byte slices are owned by the receiver.
type CreateAnnouncementReq struct {
	BroadcastId    announce.BroadcastId
	RegId          uint8
	AdvParams      AdvertisingParams
	AdvData        []byte
	PeriodicParams PeriodicAdvertisingParams
	PeriodicData   []byte
}

// Replacement payloads for an existing advertising set.  A nil slice leaves
// the corresponding payload unchanged.
type UpdateAnnouncementReq struct {
	AdvData      []byte
	PeriodicData []byte
}

// Advertising subsystem.  Every request is asynchronous; its completion is
// delivered to the owning machine through the matching On* method, usually by
// way of a Context dispatcher.
type AdvertisingManager interface {
	// Completes with OnCreateAnnouncement.
	CreateAnnouncement(req CreateAnnouncementReq)

	// Enables or disables the periodic advertising train.  Completes with
	// OnEnableAnnouncement.
	EnableAnnouncement(sid uint8, enable bool)

	// Completes with OnUpdateAnnouncement.
	UpdateAnnouncement(sid uint8, req UpdateAnnouncementReq)

	// Completes with OnRemoveAnnouncement.
	RemoveAnnouncement(sid uint8)

	// Completes with OnOwnAddress.
	RequestOwnAddress(sid uint8)
}

type BigParams struct {
	AdvHandle             uint8
	NumBis                uint8
	SduIntervalUs         uint32
	MaxSdu                uint16
	MaxTransportLatencyMs uint16
	Rtn                   uint8
	Phy                   uint8
	Packing               uint8
	Framing               uint8
	Encryption            bool
	BroadcastCode         announce.BroadcastCode
}

type IsoDataPathParams struct {
	Direction         uint8
	DataPathId        uint8
	CodecId           announce.CodecId
	ControllerDelayUs uint32
	CodecConfig       []byte
}

// Controller isochronous commands.  BIG completions arrive as LE meta events
// through HandleHciEvent; data path completions through OnSetupIsoDataPath
// and OnRemoveIsoDataPath.
type Controller interface {
	CreateBig(bigHandle uint8, params BigParams)
	TerminateBig(bigHandle uint8, reason uint8)
	SetupIsoDataPath(connHandle uint16, params IsoDataPathParams)
	RemoveIsoDataPath(connHandle uint16, direction uint8)
}

// Capability set of a broadcast source, as seen by its owner and by
// completion dispatchers.
type Machine interface {
	State() State
	BroadcastId() announce.BroadcastId
	AdvertisingSid() uint8
	BigHandle() uint8
	BigConfig() *BigConfig

	Initialize() bool
	ProcessMessage(msg Message)

	BroadcastAnnouncement() announce.BasicAudioAnnouncementData
	UpdateBroadcastAnnouncement(data announce.BasicAudioAnnouncementData)
	PublicBroadcastAnnouncement() announce.PublicBroadcastAnnouncementData
	UpdatePublicBroadcastAnnouncement(broadcastId uint32, name string,
		data announce.PublicBroadcastAnnouncementData)

	OnCreateAnnouncement(sid uint8, txPower int8, status uint8)
	OnEnableAnnouncement(enable bool, status uint8)
	OnUpdateAnnouncement(status uint8)
	OnRemoveAnnouncement(status uint8)
	OnOwnAddress(addrType bcdefs.BleAddrType, addr bcdefs.BleAddr)

	HandleHciEvent(event uint8, data []byte)
	OnSetupIsoDataPath(status uint8, connHandle uint16)
	OnRemoveIsoDataPath(status uint8, connHandle uint16)
	OwnsIsoHandle(connHandle uint16) bool

	Destroy()
}
