package validate

import "testing"

func TestCPF(t *testing.T) {
	cases := map[string]bool{
		"529.982.247-25": true,
		"52998224725":    true,
		"529.982.247-24": false,
		"111.111.111-11": false,
		"1234":           false,
		"":               false,
	}
	for in, want := range cases {
		if got := CPF(in); got != want {
			t.Fatalf("CPF(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCNPJ(t *testing.T) {
	cases := map[string]bool{
		"11.222.333/0001-81": true,
		"11222333000181":     true,
		"11.222.333/0001-80": false,
		"00000000000000":     false,
		"11.222.333/0001":    false,
	}
	for in, want := range cases {
		if got := CNPJ(in); got != want {
			t.Fatalf("CNPJ(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContactFields(t *testing.T) {
	if !Email("sindico@convivium.com.br") || Email("no at sign") || Email("a@b") {
		t.Fatalf("email validation mismatch")
	}
	if !Phone("(11) 98765-4321") || !Phone("1133334444") || Phone("98765-4321") {
		t.Fatalf("phone validation mismatch")
	}
	if Required("   ") || !Required(" x ") {
		t.Fatalf("required mismatch")
	}
	if !MinLength("senhaç", 6) || MinLength("abc", 6) {
		t.Fatalf("min length mismatch")
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"cpf", FormatCPF("52998224725"), "529.982.247-25"},
		{"cpf short", FormatCPF("123"), "123"},
		{"cnpj", FormatCNPJ("11222333000181"), "11.222.333/0001-81"},
		{"mobile", FormatPhone("11987654321"), "(11) 98765-4321"},
		{"landline", FormatPhone("1133334444"), "(11) 3333-4444"},
		{"other", FormatPhone("+1 555"), "+1 555"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Fatalf("got %q, want %q", tc.got, tc.want)
			}
		})
	}
}
