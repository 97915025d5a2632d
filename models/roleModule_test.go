package models

import (
	"testing"
)

func TestHasPermission_AllowListAndWildcard(t *testing.T) {
	ctx := setupTest(t)

	role, err := CreateRole(ctx, &NewRole{Name: "Clerk"})
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	quotations, err := CreateModule(ctx, &NewModule{Name: "Quotations"})
	if err != nil {
		t.Fatalf("create module: %v", err)
	}
	invoices, err := CreateModule(ctx, &NewModule{Name: "Invoices"})
	if err != nil {
		t.Fatalf("create module: %v", err)
	}

	_, err = SaveRoleModule(ctx, &NewRoleModule{RoleId: role.ID, ModuleId: quotations.ID, AllowedActions: "create,edit"})
	if err != nil {
		t.Fatalf("save role module: %v", err)
	}
	_, err = SaveRoleModule(ctx, &NewRoleModule{RoleId: role.ID, ModuleId: invoices.ID, AllowedActions: "*"})
	if err != nil {
		t.Fatalf("save role module: %v", err)
	}

	cases := []struct {
		module string
		action string
		want   bool
	}{
		{"Quotations", "edit", true},
		{"Quotations", "delete", false},
		{"Invoices", "delete", true},
		{"Lands", "edit", false},
	}
	for _, tc := range cases {
		got, err := HasPermission(ctx, role.ID, tc.module, tc.action)
		if err != nil {
			t.Fatalf("HasPermission(%s,%s): %v", tc.module, tc.action, err)
		}
		if got != tc.want {
			t.Fatalf("HasPermission(%s,%s) = %v, want %v", tc.module, tc.action, got, tc.want)
		}
	}
}
