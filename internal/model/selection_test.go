package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestSelectionCloneIsDeep(t *testing.T) {
    s := Selection{"entrees": {"chicken", "filet"}}
    c := s.Clone()
    c["entrees"][0] = "salmon"
    assert.Equal(t, "chicken", s["entrees"][0])
}

func TestSelectionRemove(t *testing.T) {
    s := Selection{"entrees": {"chicken", "filet"}}

    assert.True(t, s.Remove("entrees", "chicken"))
    assert.Equal(t, []string{"filet"}, s["entrees"])
    assert.False(t, s.Remove("entrees", "chicken"))

    // Removing the last item drops the section entirely.
    assert.True(t, s.Remove("entrees", "filet"))
    _, ok := s["entrees"]
    assert.False(t, ok)
}

func TestNormalizeToTierKeepsEarliestPicks(t *testing.T) {
    s := Selection{"appetizers": {"first", "second", "third"}}
    tier := &TierDefinition{Allowances: map[Section]int{"appetizers": 2}}

    assert.True(t, s.NormalizeToTier(tier))
    assert.Equal(t, []string{"first", "second"}, s["appetizers"])
    assert.False(t, s.NormalizeToTier(tier))
}

func TestNormalizeToTierZeroAllowanceDropsSection(t *testing.T) {
    s := Selection{"cakes": {"classic"}}
    tier := &TierDefinition{Allowances: map[Section]int{}}

    assert.True(t, s.NormalizeToTier(tier))
    assert.Empty(t, s)
}
