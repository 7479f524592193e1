// Package svo is the client for the filter-transmission lookup service,
// modeled on the SVO Filter Profile Service. Curves are immutable per filter,
// so they are cached in memory and, when a cache directory is configured, on
// disk as msgpack.
package svo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/telescope-tools/etcalc/internal/log"
	"github.com/telescope-tools/etcalc/pkg/bandpass"
)

// Client queries a filter profile endpoint. It implements
// etc.TransmissionService.
type Client struct {
	baseURL    string
	cacheDir   string // empty disables the disk cache
	httpClient *http.Client

	mu    sync.Mutex
	cache map[string]bandpass.Curve
}

// New creates a transmission-curve client. Timeout of zero means 30 seconds.
func New(baseURL, cacheDir string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		cacheDir:   cacheDir,
		httpClient: &http.Client{Timeout: timeout},
		cache:      make(map[string]bandpass.Curve),
	}
}

// Curve returns the transmission curve for the named filter, served from
// cache when possible.
func (c *Client) Curve(ctx context.Context, observatory, instrument, filter string) (bandpass.Curve, error) {
	id := fmt.Sprintf("%s/%s.%s", observatory, instrument, filter)

	c.mu.Lock()
	curve, ok := c.cache[id]
	c.mu.Unlock()
	if ok {
		return curve, nil
	}

	if curve, ok := c.loadDiskCache(id); ok {
		c.mu.Lock()
		c.cache[id] = curve
		c.mu.Unlock()
		return curve, nil
	}

	curve, err := c.fetch(ctx, id)
	if err != nil {
		return bandpass.Curve{}, err
	}

	c.mu.Lock()
	c.cache[id] = curve
	c.mu.Unlock()
	c.storeDiskCache(id, curve)

	return curve, nil
}

// fetch downloads and parses the two-column ASCII profile for a filter ID.
func (c *Client) fetch(ctx context.Context, id string) (bandpass.Curve, error) {
	u := fmt.Sprintf("%s?ID=%s", c.baseURL, url.QueryEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return bandpass.Curve{}, fmt.Errorf("building transmission request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return bandpass.Curve{}, fmt.Errorf("querying transmission service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return bandpass.Curve{}, fmt.Errorf("transmission service has no filter %s", id)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return bandpass.Curve{}, fmt.Errorf("transmission service returned %d: %s", resp.StatusCode, msg)
	}

	curve, err := parseProfile(resp.Body)
	if err != nil {
		return bandpass.Curve{}, fmt.Errorf("parsing profile for %s: %w", id, err)
	}

	log.Debugw("transmission curve fetched", "id", id,
		"samples", len(curve.Wavelengths), "duration_ms", time.Since(start).Milliseconds())

	return curve, nil
}

// parseProfile reads a two-column wavelength/throughput table. Lines starting
// with # are comments.
func parseProfile(r io.Reader) (bandpass.Curve, error) {
	var curve bandpass.Curve
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return bandpass.Curve{}, fmt.Errorf("malformed profile line %q", line)
		}
		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return bandpass.Curve{}, fmt.Errorf("bad wavelength %q: %w", fields[0], err)
		}
		t, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return bandpass.Curve{}, fmt.Errorf("bad throughput %q: %w", fields[1], err)
		}
		curve.Wavelengths = append(curve.Wavelengths, w)
		curve.Throughput = append(curve.Throughput, t)
	}
	if err := scanner.Err(); err != nil {
		return bandpass.Curve{}, err
	}
	if err := curve.Validate(); err != nil {
		return bandpass.Curve{}, err
	}
	return curve, nil
}

func (c *Client) cachePath(id string) string {
	name := strings.NewReplacer("/", ".", "\\", ".").Replace(id) + ".msgpack"
	return filepath.Join(c.cacheDir, name)
}

func (c *Client) loadDiskCache(id string) (bandpass.Curve, bool) {
	if c.cacheDir == "" {
		return bandpass.Curve{}, false
	}
	data, err := os.ReadFile(c.cachePath(id))
	if err != nil {
		return bandpass.Curve{}, false
	}
	var curve bandpass.Curve
	if err := msgpack.Unmarshal(data, &curve); err != nil {
		log.Warnf("discarding corrupt curve cache for %s: %v", id, err)
		os.Remove(c.cachePath(id))
		return bandpass.Curve{}, false
	}
	if curve.Validate() != nil {
		return bandpass.Curve{}, false
	}
	return curve, true
}

func (c *Client) storeDiskCache(id string, curve bandpass.Curve) {
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		log.Warnf("cannot create curve cache dir %s: %v", c.cacheDir, err)
		return
	}
	data, err := msgpack.Marshal(curve)
	if err != nil {
		log.Warnf("cannot encode curve cache for %s: %v", id, err)
		return
	}
	if err := os.WriteFile(c.cachePath(id), data, 0o644); err != nil {
		log.Warnf("cannot write curve cache for %s: %v", id, err)
	}
}
