// scppg - extract a photoplethysmogram from smartphone camera frames
//  Copyright (C) 2024, the scppg authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"

	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"

	"github.com/dcajal/scppg/ppg"
)

const (
	dbusName = "org.scppg.recorder"
	dbusPath = "/org/scppg/recorder"
)

type service struct {
	conn *dbus.Conn
}

func startService() (*service, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, errors.New("name already taken")
	}

	s := &service{conn: conn}
	conn.Export(s, dbusPath, dbusName)
	conn.Export(genIntrospectable(s), dbusPath, "org.freedesktop.DBus.Introspectable")

	return s, nil
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    dbusName,
			Methods: introspect.Methods(v),
		}},
	}
	return introspect.NewIntrospectable(node)
}

// SetRedRatioThreshold updates the finger-detection threshold while
// frames are flowing, e.g. from a settings UI.
func (s *service) SetRedRatioThreshold(percent int32) *dbus.Error {
	p := processor
	if p == nil {
		return dbusErr("SetRedRatioThreshold", errors.New("no frame source connected"))
	}
	if err := p.SetRedRatioThreshold(int(percent)); err != nil {
		return dbusErr("SetRedRatioThreshold", err)
	}
	return nil
}

// RedRatioThreshold returns the active finger-detection threshold.
func (s *service) RedRatioThreshold() (int32, *dbus.Error) {
	p := processor
	if p == nil {
		return 0, dbusErr("RedRatioThreshold", errors.New("no frame source connected"))
	}
	return int32(p.RedRatioThreshold()), nil
}

// LatestSample returns the most recent sample. Colour channels are NaN
// when no finger was detected; valid mirrors that for callers that
// would rather not poke at NaNs.
func (s *service) LatestSample() (red, green, blue, luma float64, timestampNs int64, valid bool, dberr *dbus.Error) {
	p := processor
	if p == nil {
		return 0, 0, 0, 0, 0, false, dbusErr("LatestSample", errors.New("no frame source connected"))
	}
	sample, ok := p.LatestSample()
	if !ok {
		return 0, 0, 0, 0, 0, false, dbusErr("LatestSample", errors.New("no samples yet"))
	}
	return sample.Red, sample.Green, sample.Blue, sample.Luma,
		sample.Timestamp.UnixNano(), sample.Valid(), nil
}

// watchSamples emits a FingerStateChanged signal whenever the sample
// stream flips between finger-on and finger-off. Runs as a bus
// subscriber so a slow system bus can never stall the frame callback.
func (s *service) watchSamples(ch <-chan ppg.Sample) {
	var fingerOn, started bool
	for sample := range ch {
		valid := sample.Valid()
		if !started || valid != fingerOn {
			started = true
			fingerOn = valid
			s.conn.Emit(dbusPath, dbusName+".FingerStateChanged", fingerOn)
		}
	}
}

func dbusErr(method string, err error) *dbus.Error {
	return &dbus.Error{
		Name: dbusName + "." + method,
		Body: []interface{}{err.Error()},
	}
}
