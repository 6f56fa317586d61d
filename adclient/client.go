// Package adclient dumps objects from a live Active Directory over
// LDAP, producing the JSON record format the analyzer consumes.
package adclient

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
)

// Throttle pauses between page fetches. Delay is the midpoint in
// seconds; Percent widens it into a random window on both sides.
type Throttle struct {
	Delay   float64
	Percent float64
}

func (t Throttle) sleep() {
	if t.Delay <= 0 {
		return
	}
	time.Sleep(t.jitter())
}

// jitter picks a random duration centered on Delay and bounded by
// ±Percent, at millisecond granularity.
func (t Throttle) jitter() time.Duration {
	middle := int64(t.Delay * 1000)
	variant := int64(float64(middle) * t.Percent / 100.0)
	if variant < 0 {
		variant = 0
	}
	low := middle - variant
	if low < 0 {
		low = 0
	}
	ms := low + rand.Int64N(middle+variant-low+1)
	return time.Duration(ms) * time.Millisecond
}

// Client holds one bound LDAP connection to a domain controller.
type Client struct {
	Host     string // FQDN, host:port, or full ldap:// URL
	BaseDN   string
	PageSize uint32
	Throttle Throttle

	conn *ldap.Conn
	log  *zap.Logger
}

func NewClient(host, baseDN string, pageSize uint32, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{Host: host, BaseDN: baseDN, PageSize: pageSize, log: logger}
}

// Connect dials the domain controller and binds with simple
// authentication.
func (c *Client) Connect(username, password string) error {
	url := c.Host
	if !strings.Contains(url, "://") {
		url = fmt.Sprintf("ldap://%s:389", url)
	}
	conn, err := ldap.DialURL(url)
	if err != nil {
		return fmt.Errorf("connect %s: %w", url, err)
	}
	if err := conn.Bind(username, password); err != nil {
		conn.Close()
		return fmt.Errorf("bind %s: %w", url, err)
	}
	c.conn = conn
	if res, err := conn.WhoAmI(nil); err == nil {
		c.log.Info("authenticated", zap.String("url", url), zap.String("authzid", res.AuthzID))
	}
	return nil
}

func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// sdFlagsControl builds the LDAP_SERVER_SD_FLAGS_OID control so the
// server returns ntSecurityDescriptor to non-admin binds.
// BER sequence [0x30 0x03 0x02 0x01 0x07] encodes flags = 7.
func sdFlagsControl() ldap.Control {
	value := []byte{0x30, 0x03, 0x02, 0x01, 0x07}
	return ldap.NewControlString("1.2.840.113556.1.4.801", true, string(value))
}

// FetchPages runs a paged subtree search for every attribute of every
// object matching filter, invoking processPage once per result page.
// The paging cookie of each response seeds the next request; an empty
// cookie ends the loop. The throttle, when set, sleeps between pages.
// A failed page aborts the whole fetch; pages already handed to the
// callback are not unwound.
func (c *Client) FetchPages(filter string, processPage func(entries []*ldap.Entry) error) error {
	if c.conn == nil {
		return errors.New("not connected")
	}

	pageControl := ldap.NewControlPaging(c.PageSize)
	req := ldap.NewSearchRequest(
		c.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		filter,
		[]string{}, // every attribute
		[]ldap.Control{pageControl, sdFlagsControl()},
	)

	page := 0
	for {
		res, err := c.conn.Search(req)
		if err != nil {
			return fmt.Errorf("search page %d: %w", page+1, err)
		}
		page++
		c.log.Info("fetched page", zap.Int("page", page), zap.Int("entries", len(res.Entries)))
		if err := processPage(res.Entries); err != nil {
			return fmt.Errorf("processing page %d: %w", page, err)
		}

		found := ldap.FindControl(res.Controls, ldap.ControlTypePaging)
		paging, ok := found.(*ldap.ControlPaging)
		if !ok || len(paging.Cookie) == 0 {
			return nil
		}
		pageControl.SetCookie(paging.Cookie)
		c.Throttle.sleep()
	}
}
