package aurora

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/MrTrustworthy/auri/internal/logging"
	"go.uber.org/zap"
)

var discoverLogger = logging.New("discover")

// SSDP parameters for the Aurora's UPnP presence announcements.
const (
	ssdpAddr = "239.255.255.250:1900"
	ssdpST   = "nanoleaf_aurora:light"
	ssdpMX   = 3

	// searchWindow caps the total wait so Discover terminates even when the
	// caller's context carries no deadline.
	searchWindow = 30 * time.Second
)

// searchDeadline is when the discovery loop gives up: the context's deadline
// when it expires sooner, the fixed search window otherwise.
func searchDeadline(ctx context.Context, now time.Time) time.Time {
	deadline := now.Add(searchWindow)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}

var (
	locationPattern = regexp.MustCompile(`(?i)location:\s*http://([0-9.]+):16021`)
	deviceIDPattern = regexp.MustCompile(`(?i)nl-deviceid:\s*([0-9a-f:]+)`)
)

// Discovered is one Aurora found on the local network.
type Discovered struct {
	IP  string
	MAC string
}

// Discover multicasts an SSDP M-SEARCH and collects responses until amount
// devices have answered or the context expires. Duplicate answers from the
// same device are dropped.
func Discover(ctx context.Context, amount int) ([]Discovered, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("opening discovery socket: %w", err)
	}
	defer conn.Close()

	dst, err := net.ResolveUDPAddr("udp4", ssdpAddr)
	if err != nil {
		return nil, fmt.Errorf("resolving SSDP address: %w", err)
	}

	search := strings.Join([]string{
		"M-SEARCH * HTTP/1.1",
		"HOST: " + ssdpAddr,
		`MAN: "ssdp:discover"`,
		"ST: " + ssdpST,
		fmt.Sprintf("MX: %d", ssdpMX),
		"", "",
	}, "\r\n")
	if _, err := conn.WriteTo([]byte(search), dst); err != nil {
		return nil, fmt.Errorf("sending M-SEARCH: %w", err)
	}

	seen := make(map[string]bool)
	var found []Discovered
	buf := make([]byte, 2048)
	windowEnd := searchDeadline(ctx, time.Now())

	for len(found) < amount {
		if !time.Now().Before(windowEnd) {
			discoverLogger.With(zap.Int("found", len(found))).Info("Search window elapsed")
			return found, nil
		}
		deadline := time.Now().Add(time.Second)
		if windowEnd.Before(deadline) {
			deadline = windowEnd
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return found, err
		}

		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return found, ctx.Err()
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return found, err
		}

		response := string(buf[:n])
		loc := locationPattern.FindStringSubmatch(response)
		if loc == nil {
			continue
		}
		ip := loc[1]
		if seen[ip] {
			continue
		}
		seen[ip] = true

		var mac string
		if m := deviceIDPattern.FindStringSubmatch(response); m != nil {
			mac = m[1]
		}
		discoverLogger.With(zap.String("ip", ip), zap.String("mac", mac)).Info("Found Aurora")
		found = append(found, Discovered{IP: ip, MAC: mac})
	}

	return found, nil
}
