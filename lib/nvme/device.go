//
// (C) Copyright 2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package nvme

import (
	"time"

	"github.com/pkg/errors"

	"github.com/daos-stack/go-nvme/logging"
)

const defaultNSID = 1

// Timeouts bound how long the dispatcher may block per command class.
// NoTimeout leaves the class unbounded on the host side.
type Timeouts struct {
	Admin    time.Duration
	IO       time.Duration
	Format   time.Duration
	Sanitize time.Duration
}

// DefaultTimeouts returns the timeouts used by a new Device. Format and
// sanitize may run for hours and are left unbounded.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Admin:    60 * time.Second,
		IO:       30 * time.Second,
		Format:   NoTimeout,
		Sanitize: NoTimeout,
	}
}

// Device is the handle to one connected NVMe controller. It caches
// identify data between calls.
//
// A Device is not safe for concurrent use; callers issuing commands from
// multiple goroutines must serialize access themselves.
type Device struct {
	log       logging.Logger
	transport Transport
	nsid      uint32
	timeouts  Timeouts
	metrics   *Metrics
	info      *DeviceInfo
}

// NewDevice returns a Device which submits commands via the supplied
// transport. The default namespace is 1.
func NewDevice(log logging.Logger, transport Transport) *Device {
	return &Device{
		log:       log,
		transport: transport,
		nsid:      defaultNSID,
		timeouts:  DefaultTimeouts(),
	}
}

// WithNamespace sets the namespace used by NVM commands and namespace
// scoped admin commands.
func (d *Device) WithNamespace(nsid uint32) *Device {
	if nsid != d.nsid {
		d.info = nil
	}
	d.nsid = nsid
	return d
}

// WithTimeouts sets the per-class command timeouts.
func (d *Device) WithTimeouts(timeouts Timeouts) *Device {
	d.timeouts = timeouts
	return d
}

// WithMetrics attaches a metrics collector which is updated on every
// dispatch.
func (d *Device) WithMetrics(m *Metrics) *Device {
	d.metrics = m
	return d
}

// Namespace returns the device's default namespace ID.
func (d *Device) Namespace() uint32 {
	return d.nsid
}

// Timeouts returns the device's per-class command timeouts.
func (d *Device) Timeouts() Timeouts {
	return d.timeouts
}

func (d *Device) nsidOr(nsid uint32) uint32 {
	if nsid == 0 {
		return d.nsid
	}
	return nsid
}

func (d *Device) adminCommand(op AdminOpcode, nsid uint32) *Command {
	cmd := newAdminCommand(op, nsid)
	cmd.Timeout = d.timeouts.Admin
	return cmd
}

func (d *Device) nvmCommand(op NvmOpcode, nsid uint32) *Command {
	cmd := newNvmCommand(op, nsid)
	cmd.Timeout = d.timeouts.IO
	return cmd
}

func checkDirection(cmd *Command) error {
	switch cmd.Direction {
	case XferNone:
		if len(cmd.Data) != 0 {
			return badParam("%s: data buffer supplied for command without data phase", cmd.OpcodeName())
		}
	case XferToDevice, XferFromDevice:
		if len(cmd.Data) == 0 {
			return badParam("%s: empty data buffer for %s transfer", cmd.OpcodeName(), cmd.Direction)
		}
	default:
		return badParam("%s: invalid transfer direction %d", cmd.OpcodeName(), cmd.Direction)
	}

	return nil
}

// Dispatch submits the command through the device transport and stores
// the completion in cmd.Completion. A command may only be dispatched
// once. No retries are attempted.
func (d *Device) Dispatch(cmd *Command) error {
	if cmd == nil {
		return FaultBadParameter("nil command")
	}
	if cmd.dispatched {
		return badParam("%s: command already dispatched", cmd.OpcodeName())
	}
	if err := checkDirection(cmd); err != nil {
		return err
	}
	if d.transport == nil {
		return &TransportError{Opcode: cmd.OpcodeName(), Err: errors.New("no transport")}
	}
	cmd.dispatched = true

	d.log.Debugf("nvme: submitting %s", cmd)
	if d.log.EnabledFor(logging.LogLevelTrace) {
		d.log.Tracef("nvme: %s cdw10-15 %08x timeout %s", cmd.OpcodeName(), cmd.Dwords(), cmd.Timeout)
	}

	start := time.Now()
	comp, err := d.transport.Submit(cmd)
	elapsed := time.Since(start)
	if err != nil {
		d.metrics.observe(cmd, ResultTransportError, elapsed)
		d.log.Debugf("nvme: %s transport failure after %s: %s", cmd.OpcodeName(), elapsed, err)

		var te *TransportError
		if errors.As(err, &te) {
			return err
		}
		return &TransportError{Opcode: cmd.OpcodeName(), Err: err}
	}
	cmd.Completion = comp

	if !comp.Status.Success() {
		d.metrics.observe(cmd, ResultDeviceError, elapsed)
		d.log.Debugf("nvme: %s completed with status %s", cmd.OpcodeName(), comp.Status)
		return &StatusError{
			Type:   cmd.Type,
			Opcode: cmd.OpcodeName(),
			Status: comp.Status,
		}
	}

	d.metrics.observe(cmd, ResultSuccess, elapsed)
	d.log.Tracef("nvme: %s completed in %s dw0 0x%08x", cmd.OpcodeName(), elapsed, comp.DW0)

	return nil
}
