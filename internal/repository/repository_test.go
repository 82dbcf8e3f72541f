package repository

import (
	"reflect"
	"testing"
)

func TestStoreAddsMembersOnlyThroughInvitations(t *testing.T) {
	store := reflect.TypeOf((*Store)(nil)).Elem()

	if _, ok := store.MethodByName("AddProjectMember"); ok {
		t.Error("Store exposes AddProjectMember, members must join through AcceptPendingInvitation")
	}
	if _, ok := store.MethodByName("AcceptPendingInvitation"); !ok {
		t.Error("Store lacks AcceptPendingInvitation")
	}
}
