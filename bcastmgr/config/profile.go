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

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"mynewt.apache.org/leabcast/bcast/announce"
	"mynewt.apache.org/leabcast/bcast/bcdefs"
	"mynewt.apache.org/leabcast/bcast/broadcaster"
	"mynewt.apache.org/leabcast/bcastmgr/bmutil"
	"mynewt.apache.org/newt/util"
)

const DFLT_PROFILE_NAME = "default"

// Describes one broadcast source.
type Profile struct {
	Name                string `yaml:"name"`
	BroadcastId         uint32 `yaml:"broadcast_id"`
	BroadcastName       string `yaml:"broadcast_name"`
	Public              bool   `yaml:"public"`
	Phy                 string `yaml:"phy"`
	SamplingHz          uint32 `yaml:"sampling_hz"`
	FrameDurationUs     uint32 `yaml:"frame_duration_us"`
	OctetsPerFrame      uint16 `yaml:"octets_per_frame"`
	NumBis              int    `yaml:"num_bis"`
	Rtn                 uint8  `yaml:"rtn"`
	MaxLatencyMs        uint16 `yaml:"max_latency_ms"`
	PresentationDelayUs uint32 `yaml:"presentation_delay_us"`
	Language            string `yaml:"language,omitempty"`
	BroadcastCode       string `yaml:"broadcast_code,omitempty"`
}

func NewProfile() *Profile {
	return &Profile{
		Name:                DFLT_PROFILE_NAME,
		BroadcastId:         0x123456,
		BroadcastName:       "Broadcast",
		Public:              true,
		Phy:                 "2m",
		SamplingHz:          48000,
		FrameDurationUs:     10000,
		OctetsPerFrame:      100,
		NumBis:              2,
		Rtn:                 4,
		MaxLatencyMs:        60,
		PresentationDelayUs: 40000,
	}
}

func (p *Profile) String() string {
	return fmt.Sprintf("name=%s broadcast_id=0x%06x broadcast_name=\"%s\" "+
		"public=%t phy=%s sampling_hz=%d octets_per_frame=%d num_bis=%d "+
		"encrypted=%t",
		p.Name, p.BroadcastId, p.BroadcastName, p.Public, p.Phy,
		p.SamplingHz, p.OctetsPerFrame, p.NumBis, p.BroadcastCode != "")
}

// Applies a single "key=value" override.
func (p *Profile) Set(kv string) error {
	toks := strings.SplitN(kv, "=", 2)
	if len(toks) != 2 {
		return util.FmtNewtError("invalid setting \"%s\"; expected key=value",
			kv)
	}
	k, v := strings.TrimSpace(toks[0]), strings.TrimSpace(toks[1])

	var err error
	switch k {
	case "broadcast_id":
		p.BroadcastId, err = cast.ToUint32E(v)
	case "broadcast_name":
		p.BroadcastName = v
	case "public":
		p.Public, err = cast.ToBoolE(v)
	case "phy":
		p.Phy = v
	case "sampling_hz":
		p.SamplingHz, err = cast.ToUint32E(v)
	case "frame_duration_us":
		p.FrameDurationUs, err = cast.ToUint32E(v)
	case "octets_per_frame":
		p.OctetsPerFrame, err = cast.ToUint16E(v)
	case "num_bis":
		p.NumBis, err = cast.ToIntE(v)
	case "rtn":
		p.Rtn, err = cast.ToUint8E(v)
	case "max_latency_ms":
		p.MaxLatencyMs, err = cast.ToUint16E(v)
	case "presentation_delay_us":
		p.PresentationDelayUs, err = cast.ToUint32E(v)
	case "language":
		p.Language = v
	case "broadcast_code":
		p.BroadcastCode = v
	default:
		return util.FmtNewtError("unknown setting \"%s\"", k)
	}

	if err != nil {
		return util.FmtNewtError("invalid value for %s: %s", k, err.Error())
	}

	return nil
}

func (p *Profile) broadcastConfiguration() (announce.BroadcastConfiguration, error) {
	cs, err := announce.Lc3CodecSpecific(p.SamplingHz, p.FrameDurationUs,
		p.OctetsPerFrame, 0)
	if err != nil {
		return announce.BroadcastConfiguration{}, err
	}

	if p.NumBis < 1 || p.NumBis > 0x1f {
		return announce.BroadcastConfiguration{},
			errors.Errorf("invalid BIS count: %d", p.NumBis)
	}

	sg := announce.BroadcastSubgroupCodecConfig{
		CodecId:       announce.CodecIdLc3,
		CodecSpecific: cs,
		BitsPerSample: 16,
	}
	for i := 0; i < p.NumBis; i++ {
		sg.Bises = append(sg.Bises, announce.BroadcastSubgroupBisCodecConfig{
			NumBis:        1,
			CodecSpecific: announce.AllocationLTV(1 << uint(i)),
		})
	}

	return announce.BroadcastConfiguration{
		Subgroups: []announce.BroadcastSubgroupCodecConfig{sg},
		Qos: announce.BroadcastQosConfig{
			Rtn:                   p.Rtn,
			MaxTransportLatencyMs: p.MaxLatencyMs,
		},
		DataPath: announce.DataPathConfig{
			// HCI transparent path.
			CodecId: announce.CodecId{CodingFormat: 0x03},
		},
		SduIntervalUs: p.FrameDurationUs,
		MaxSduOctets:  p.OctetsPerFrame,
	}, nil
}

// Converts the profile into a state machine configuration.
func (p *Profile) StateMachineConfig() (broadcaster.StateMachineConfig, error) {
	cfg := broadcaster.StateMachineConfig{
		IsPublic:      p.Public,
		BroadcastId:   announce.BroadcastId(p.BroadcastId),
		BroadcastName: p.BroadcastName,
	}

	var err error
	cfg.StreamingPhy, err = bcdefs.PhyFromString(p.Phy)
	if err != nil {
		return cfg, errors.Wrapf(err, "profile %s", p.Name)
	}

	cfg.Config, err = p.broadcastConfiguration()
	if err != nil {
		return cfg, errors.Wrapf(err, "profile %s", p.Name)
	}

	md, err := announce.Metadata(announce.CONTEXT_MEDIA, p.Language)
	if err != nil {
		return cfg, errors.Wrapf(err, "profile %s", p.Name)
	}

	cfg.Announcement = announce.BasicAudioAnnouncementFromConfig(cfg.Config,
		p.PresentationDelayUs, md)

	features := announce.PBP_FEATURE_STANDARD_QUALITY
	if p.SamplingHz == 48000 {
		features = announce.PBP_FEATURE_HIGH_QUALITY
	}
	cfg.PublicAnnouncement = announce.PublicBroadcastAnnouncementData{
		Features: features,
		Metadata: md.Clone(),
	}

	if p.BroadcastCode != "" {
		code, err := announce.ParseBroadcastCode(p.BroadcastCode)
		if err != nil {
			return cfg, errors.Wrapf(err, "profile %s", p.Name)
		}
		cfg.BroadcastCode = &code
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "profile %s", p.Name)
	}

	return cfg, nil
}

type profileFile struct {
	Profiles []*Profile `yaml:"profiles"`
}

type ProfileMgr struct {
	filename string
	profiles map[string]*Profile
}

func profileCfgFilename() (string, error) {
	if bmutil.Environ.CfgFile != "" {
		return bmutil.Environ.CfgFile, nil
	}

	dir, err := homedir.Dir()
	if err != nil {
		return "", util.NewNewtError(err.Error())
	}

	return filepath.Join(dir, bmutil.ToolInfo.CfgFilename), nil
}

// Creates a profile manager backed by the given file.
func NewProfileMgrFile(filename string) (*ProfileMgr, error) {
	pm := &ProfileMgr{
		filename: filename,
		profiles: map[string]*Profile{},
	}

	if err := pm.Init(); err != nil {
		return nil, err
	}

	return pm, nil
}

func NewProfileMgr() (*ProfileMgr, error) {
	filename, err := profileCfgFilename()
	if err != nil {
		return nil, err
	}

	return NewProfileMgrFile(filename)
}

func (pm *ProfileMgr) Init() error {
	log.Debugf("Reading broadcast profiles from %s", pm.filename)
	blob, err := ioutil.ReadFile(pm.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		} else {
			return util.ChildNewtError(err)
		}
	}

	var pf profileFile
	if err := yaml.Unmarshal(blob, &pf); err != nil {
		return util.FmtNewtError("error reading broadcast profile "+
			"config (%s): %s", pm.filename, err.Error())
	}

	for _, p := range pf.Profiles {
		pm.profiles[p.Name] = p
	}

	return nil
}

func (pm *ProfileMgr) ProfileList() []*Profile {
	list := make([]*Profile, 0, len(pm.profiles))
	for _, p := range pm.profiles {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	return list
}

func (pm *ProfileMgr) save() error {
	b, err := yaml.Marshal(&profileFile{Profiles: pm.ProfileList()})
	if err != nil {
		return util.NewNewtError(err.Error())
	}

	if err := ioutil.WriteFile(pm.filename, b, 0644); err != nil {
		return util.ChildNewtError(err)
	}

	return nil
}

func (pm *ProfileMgr) AddProfile(p *Profile) error {
	pm.profiles[p.Name] = p
	return pm.save()
}

func (pm *ProfileMgr) DeleteProfile(name string) error {
	if pm.profiles[name] == nil {
		return util.FmtNewtError("broadcast profile \"%s\" doesn't exist",
			name)
	}

	delete(pm.profiles, name)
	return pm.save()
}

// Retrieves the named profile.  The default profile is synthesized if it has
// not been saved.
func (pm *ProfileMgr) Profile(name string) (*Profile, error) {
	if name == "" {
		name = DFLT_PROFILE_NAME
	}

	p := pm.profiles[name]
	if p == nil {
		if name == DFLT_PROFILE_NAME {
			return NewProfile(), nil
		}
		return nil, util.FmtNewtError("broadcast profile \"%s\" doesn't "+
			"exist", name)
	}

	cp := *p
	return &cp, nil
}

var globalProfileMgr *ProfileMgr

func GlobalProfileMgr() *ProfileMgr {
	if globalProfileMgr == nil {
		panic("broadcast profile manager not initialized")
	}
	return globalProfileMgr
}

func InitGlobalProfileMgr() error {
	if globalProfileMgr != nil {
		return util.NewNewtError("broadcast profile manager initialized twice")
	}

	var err error
	globalProfileMgr, err = NewProfileMgr()
	if err != nil {
		return err
	}

	return nil
}
