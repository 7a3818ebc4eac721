package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestStepRankOrdering(t *testing.T) {
    assert.Less(t, StepRank(StepIntro), StepRank(StepTierSelect))
    assert.Less(t, StepRank(StepCart), StepRank(StepCheckout))
    assert.Less(t, StepRank(StepCheckout), StepRank(StepThankYou))
    assert.Equal(t, -1, StepRank(StepID("nonsense")))
}

func TestFurthestStep(t *testing.T) {
    assert.Equal(t, StepCheckout, FurthestStep(StepCart, StepCheckout))
    assert.Equal(t, StepCheckout, FurthestStep(StepCheckout, StepCart))
    // Ties favor the first argument.
    assert.Equal(t, StepCart, FurthestStep(StepCart, StepCart))
    // Corrupt snapshots never win.
    assert.Equal(t, StepIntro, FurthestStep(StepIntro, StepID("corrupt")))
}

func TestTerminalSteps(t *testing.T) {
    assert.True(t, IsTerminalStep(StepThankYou))
    assert.True(t, IsTerminalStep(StepReturn))
    assert.False(t, IsTerminalStep(StepCheckout))
}

func TestSiblingFlow(t *testing.T) {
    s, ok := SiblingFlow(FlowCatering)
    assert.True(t, ok)
    assert.Equal(t, FlowDesserts, s)

    s, ok = SiblingFlow(FlowDesserts)
    assert.True(t, ok)
    assert.Equal(t, FlowCatering, s)

    _, ok = SiblingFlow(FlowVenue)
    assert.False(t, ok)
}

func TestCheckoutLockReasonPerFlow(t *testing.T) {
    assert.Equal(t, LockReasonCateringCheckout, CheckoutLockReason(FlowCatering))
    assert.Equal(t, LockReasonDessertsCheckout, CheckoutLockReason(FlowDesserts))
    assert.Equal(t, LockReasonVenue, CheckoutLockReason(FlowVenue))
    assert.Equal(t, LockReason("florals"), CheckoutLockReason(FlowFlorals))
}

func TestToggleAddon(t *testing.T) {
    st := BookingFlowState{}
    st.ToggleAddon(7, true)
    st.ToggleAddon(7, true) // idempotent
    assert.Equal(t, []uint64{7}, st.Addons)

    st.ToggleAddon(9, true)
    st.ToggleAddon(7, false)
    assert.Equal(t, []uint64{9}, st.Addons)

    st.ToggleAddon(4, false) // disabling an absent addon is a no-op
    assert.Equal(t, []uint64{9}, st.Addons)
}

func TestGuestCountAddReason(t *testing.T) {
    gc := GuestCount{}
    assert.True(t, gc.AddReason(LockReasonVenue))
    assert.False(t, gc.AddReason(LockReasonVenue))
    assert.True(t, gc.AddReason(LockReasonCateringCheckout))
    assert.True(t, gc.HasReason(LockReasonVenue))
    assert.False(t, gc.HasReason(LockReasonFinal))
}
