package model

// Selection records the chosen item names per section, in the order they
// were picked.  Order matters: when a tier change shrinks a section's
// allowance, the earliest picks survive.
type Selection map[Section][]string

// Clone returns a deep copy of the selection.
func (s Selection) Clone() Selection {
    out := make(Selection, len(s))
    for sec, items := range s {
        cp := make([]string, len(items))
        copy(cp, items)
        out[sec] = cp
    }
    return out
}

// CountIn returns how many items are currently chosen in a section.
func (s Selection) CountIn(sec Section) int { return len(s[sec]) }

// Contains reports whether the named item is already picked in a section.
func (s Selection) Contains(sec Section, name string) bool {
    for _, n := range s[sec] {
        if n == name {
            return true
        }
    }
    return false
}

// Remove deletes the named item from a section and reports whether it was
// present.
func (s Selection) Remove(sec Section, name string) bool {
    items := s[sec]
    for i, n := range items {
        if n == name {
            s[sec] = append(items[:i], items[i+1:]...)
            if len(s[sec]) == 0 {
                delete(s, sec)
            }
            return true
        }
    }
    return false
}

// NormalizeToTier truncates each section's list to the tier's allowance,
// keeping the earliest-chosen items.  It reports whether anything was
// cut so callers can notify dependent screens.  The truncation is
// deterministic: the first picks always survive.
func (s Selection) NormalizeToTier(tier *TierDefinition) bool {
    changed := false
    for sec, items := range s {
        max := tier.AllowanceFor(sec)
        if len(items) > max {
            if max <= 0 {
                delete(s, sec)
            } else {
                s[sec] = items[:max]
            }
            changed = true
        }
    }
    return changed
}
