package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseWatch(t *testing.T) {
	tests := []struct {
		name    string
		cli     bool
		in      []string
		want    *configWatch
		wantErr bool
	}{
		{name: "cli", cli: true, in: []string{"eth0"}, want: &configWatch{Iface: "eth0"}},
		{name: "cli allmulti", cli: true, in: []string{"eth0", "allmulti"}, want: &configWatch{Iface: "eth0", AllMulti: true}},
		{name: "cli pcap", cli: true, in: []string{"eth0", "pcap", "/tmp/ndp.pcap", "allmulti"}, want: &configWatch{Iface: "eth0", AllMulti: true, Pcap: "/tmp/ndp.pcap"}},
		{name: "cli pcap without file", cli: true, in: []string{"eth0", "pcap"}, wantErr: true},
		{name: "cli junk", cli: true, in: []string{"eth0", "yes"}, wantErr: true},
		{name: "cli empty", cli: true, in: nil, wantErr: true},
		{name: "config", in: []string{"    iface eth1", "    allmulti on"}, want: &configWatch{Iface: "eth1", AllMulti: true}},
		{name: "config pcap", in: []string{"iface eth1", "pcap /var/tmp/eth1.pcap"}, want: &configWatch{Iface: "eth1", Pcap: "/var/tmp/eth1.pcap"}},
		{name: "config allmulti off", in: []string{"iface eth1", "allmulti off"}, want: &configWatch{Iface: "eth1"}},
		{name: "config without iface", in: []string{"allmulti on"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *configWatch
			var err error
			if tt.cli {
				got, err = parseWatchArgs(tt.in)
			} else {
				got, err = parseWatchConfig(tt.in)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreUnexported(configWatch{})); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSolicit(t *testing.T) {
	tests := []struct {
		name    string
		cli     bool
		in      []string
		want    *configSolicit
		wantErr bool
	}{
		{name: "cli", cli: true, in: []string{"eth0"}, want: &configSolicit{Iface: "eth0"}},
		{name: "cli vlan", cli: true, in: []string{"eth0", "100"}, want: &configSolicit{Iface: "eth0", VLAN: 100}},
		{name: "cli vlan out of range", cli: true, in: []string{"eth0", "4095"}, wantErr: true},
		{name: "cli vlan not a number", cli: true, in: []string{"eth0", "ten"}, wantErr: true},
		{name: "config", in: []string{"iface eth2", "vlan 7"}, want: &configSolicit{Iface: "eth2", VLAN: 7}},
		{name: "config bad vlan", in: []string{"iface eth2", "vlan -1"}, wantErr: true},
		{name: "config without iface", in: []string{"vlan 7"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *configSolicit
			var err error
			if tt.cli {
				got, err = parseSolicitArgs(tt.in)
			} else {
				got, err = parseSolicitConfig(tt.in)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
