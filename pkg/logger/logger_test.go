package logger

import (
	"testing"

	"github.com/mathisDlmr/Tutut-sub000/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{"json 默认", config.LogConfig{Level: "info", Format: "json"}, false},
		{"console", config.LogConfig{Level: "debug", Format: "console"}, false},
		{"格式为空回退 json", config.LogConfig{Level: "warn"}, false},
		{"无效级别", config.LogConfig{Level: "loud", Format: "json"}, true},
		{"无效格式", config.LogConfig{Level: "info", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("期望 wantErr=%v，实际 err=%v", tt.wantErr, err)
			}
			if err == nil && l == nil {
				t.Error("logger 不应为 nil")
			}
		})
	}
}
