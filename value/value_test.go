package value

import "testing"

func TestNilEquality(t *testing.T) {
	if !Nil().Equal(Nil()) {
		t.Errorf("Nil() != Nil()")
	}
}

func TestCrossTypeEqualityIsFalse(t *testing.T) {
	if Int32(0).Equal(Bool(false)) {
		t.Errorf("Int32(0) should not equal Bool(false)")
	}
	if Int32(1).Equal(Nil()) {
		t.Errorf("Int32(1) should not equal Nil()")
	}
}

func TestInt32RoundTrip(t *testing.T) {
	for _, want := range []int32{0, 1, -1, 2147483647, -2147483648, 42} {
		v := Int32(want)
		got, ok := v.AsInt32()
		if !ok || got != want {
			t.Errorf("Int32(%d).AsInt32() = (%d, %v)", want, got, ok)
		}
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	for _, want := range []float32{0, 1.5, -1.5, 3.14159} {
		v := Float32(want)
		got, ok := v.AsFloat32()
		if !ok || got != want {
			t.Errorf("Float32(%v).AsFloat32() = (%v, %v)", want, got, ok)
		}
	}
}

func TestBoolRoundTrip(t *testing.T) {
	if got, ok := Bool(true).AsBool(); !ok || !got {
		t.Errorf("Bool(true).AsBool() = (%v, %v)", got, ok)
	}
	if got, ok := Bool(false).AsBool(); !ok || got {
		t.Errorf("Bool(false).AsBool() = (%v, %v)", got, ok)
	}
}

func TestAsWrongKindFails(t *testing.T) {
	if _, ok := Int32(1).AsBool(); ok {
		t.Errorf("Int32.AsBool() should fail")
	}
	if _, ok := Bool(true).AsInt32(); ok {
		t.Errorf("Bool.AsInt32() should fail")
	}
}

func TestRegisterTypeRejectsOversizedPayload(t *testing.T) {
	_, err := RegisterType("toolarge", 17, 1, func(a, b [16]byte) bool { return a == b })
	if err == nil {
		t.Errorf("expected error for oversized payload")
	}
}

func TestRegisterTypeRejectsDuplicate(t *testing.T) {
	if _, err := RegisterType("dup_test_type", 4, 4, func(a, b [16]byte) bool { return a == b }); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := RegisterType("dup_test_type", 4, 4, func(a, b [16]byte) bool { return a == b }); err == nil {
		t.Errorf("expected error for duplicate registration")
	}
}

func TestBuiltinTypeIDsAreStable(t *testing.T) {
	m, ok := LookupTypeByName("int32")
	if !ok || m.ID != TypeInt32.ID {
		t.Errorf("LookupTypeByName(int32) mismatch")
	}
}
