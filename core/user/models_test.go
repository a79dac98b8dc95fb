package user

import "testing"

func TestNewUser_Validate(t *testing.T) {
	tests := []struct {
		name      string
		nu        NewUser
		wantUname string
		wantErr   bool
	}{
		{
			name:      "ok",
			nu:        NewUser{Username: "  John_Doe ", PasswordHash: []byte("x"), Role: RoleStudent},
			wantUname: "john_doe",
		},
		{
			name:    "too short",
			nu:      NewUser{Username: "jd", PasswordHash: []byte("x"), Role: RoleStudent},
			wantErr: true,
		},
		{
			name:    "illegal characters",
			nu:      NewUser{Username: "john doe!", PasswordHash: []byte("x"), Role: RoleTeacher},
			wantErr: true,
		},
		{
			name:    "unknown role",
			nu:      NewUser{Username: "johndoe", PasswordHash: []byte("x"), Role: "admin"},
			wantErr: true,
		},
		{
			name:    "missing hash",
			nu:      NewUser{Username: "johndoe", Role: RoleStudent},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("Validate() = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() failed: %v", err)
			}
			if tt.nu.Username != tt.wantUname {
				t.Errorf("Username = %q, want %q", tt.nu.Username, tt.wantUname)
			}
		})
	}
}
