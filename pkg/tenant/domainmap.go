package tenant

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// DomainMapper binds public hostnames to env files and tenant kinds,
// persisted as a single JSON document and cached in memory (§3). The
// EnvFileManager upserts and removes its entries; the identification
// pipeline's custom-domain strategy looks hosts up in the ConfigStore, not
// here.
type DomainMapper struct {
	path string

	mu      sync.RWMutex
	entries map[string]DomainMappingEntry // keyed by lower-cased domain
}

// NewDomainMapper loads (or initializes) the mapping file at path.
func NewDomainMapper(path string) (*DomainMapper, error) {
	m := &DomainMapper{path: path, entries: make(map[string]DomainMappingEntry)}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *DomainMapper) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("tenant: reading domain map: %w", err)
	}

	var list []DomainMappingEntry
	if err := json.Unmarshal(data, &list); err != nil {
		return NewTenantConfigInvalidError(fmt.Sprintf("domain map is not valid JSON: %v", err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range list {
		m.entries[strings.ToLower(e.Domain)] = e
	}
	return nil
}

func (m *DomainMapper) persist() error {
	m.mu.RLock()
	list := make([]DomainMappingEntry, 0, len(m.entries))
	for _, e := range m.entries {
		list = append(list, e)
	}
	m.mu.RUnlock()

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("tenant: marshalling domain map: %w", err)
	}
	return atomicWriteFile(m.path, data, 0o644)
}

// Lookup resolves a hostname to its mapping entry. Returns errNotFound if
// no active entry exists for the domain.
func (m *DomainMapper) Lookup(domain string) (DomainMappingEntry, error) {
	m.mu.RLock()
	entry, ok := m.entries[strings.ToLower(domain)]
	m.mu.RUnlock()

	if !ok || !entry.IsActive {
		return DomainMappingEntry{}, errNotFound
	}
	return entry, nil
}

// Resolve matches host against the mapping using the fallback policy from
// spec.md §4.3: strip the port, try an exact match, and otherwise split
// host into its leading label and base domain and match any active entry
// sharing that base domain whose own leading label is equal to, or a
// substring of (either direction), host's label.
func (m *DomainMapper) Resolve(host string) (DomainMappingEntry, bool) {
	host = strings.ToLower(stripPort(host))

	if entry, err := m.Lookup(host); err == nil {
		return entry, true
	}

	hostLabel, hostBase, ok := splitHostLabel(host)
	if !ok {
		return DomainMappingEntry{}, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for domain, entry := range m.entries {
		if !entry.IsActive {
			continue
		}
		entryLabel, entryBase, ok := splitHostLabel(domain)
		if !ok || entryBase != hostBase {
			continue
		}
		if entryLabel == hostLabel || strings.Contains(entryLabel, hostLabel) || strings.Contains(hostLabel, entryLabel) {
			return entry, true
		}
	}
	return DomainMappingEntry{}, false
}

// splitHostLabel splits host into its leading label and the remaining base
// domain, e.g. "acme.platform.example.com" -> ("acme", "platform.example.com").
func splitHostLabel(host string) (label, base string, ok bool) {
	i := strings.IndexByte(host, '.')
	if i < 0 {
		return "", "", false
	}
	return host[:i], host[i+1:], true
}

// Set adds or replaces a mapping entry and persists the change.
func (m *DomainMapper) Set(entry DomainMappingEntry) error {
	if entry.Domain == "" {
		return NewTenantConfigInvalidError("domain is required")
	}
	if entry.EnvFile == "" {
		return NewTenantConfigInvalidError("envFile is required")
	}

	m.mu.Lock()
	m.entries[strings.ToLower(entry.Domain)] = entry
	m.mu.Unlock()

	return m.persist()
}

// Remove deletes a mapping entry and persists the change.
func (m *DomainMapper) Remove(domain string) error {
	m.mu.Lock()
	delete(m.entries, strings.ToLower(domain))
	m.mu.Unlock()

	return m.persist()
}

// List returns every mapping entry, active or not.
func (m *DomainMapper) List() []DomainMappingEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]DomainMappingEntry, 0, len(m.entries))
	for _, e := range m.entries {
		list = append(list, e)
	}
	return list
}
