package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/elisa-rivadeneira/gestor-documentario/config"
	"github.com/elisa-rivadeneira/gestor-documentario/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(&config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testDate(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestNumberParts(t *testing.T) {
	tests := []struct {
		number          string
		wantYear        int
		wantCorrelative int
	}{
		{"01234-2024", 2024, 1234},
		{"OFICIO N° 00567-2023-REGION", 2023, 567},
		{"123-2024", 2024, 123},
		{"sin numero", 0, 0},
		{"", 0, 0},
		{"12", 0, 0},
	}
	for _, tt := range tests {
		year, correlative := numberParts(tt.number)
		if year != tt.wantYear || correlative != tt.wantCorrelative {
			t.Errorf("numberParts(%q) = (%d, %d), want (%d, %d)",
				tt.number, year, correlative, tt.wantYear, tt.wantCorrelative)
		}
	}
}

func TestDocumentCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &model.DocumentRecord{
		Kind:      model.KindOficio,
		Direction: model.DirectionReceived,
		Number:    "00100-2024",
		Date:      testDate(2024, time.March, 5),
		Sender:    "Comisaría Central",
		Subject:   "Requerimiento de mantenimiento",
	}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if doc.ID == 0 {
		t.Fatal("Expected generated id")
	}
	if doc.Year != 2024 || doc.Correlative != 100 {
		t.Errorf("Expected ordering parts 2024/100, got %d/%d", doc.Year, doc.Correlative)
	}

	got, err := store.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected document, got nil")
	}
	if got.Number != "00100-2024" || got.Sender != "Comisaría Central" {
		t.Errorf("Unexpected document: %+v", got)
	}
	if got.Date == nil || got.Date.Format("2006-01-02") != "2024-03-05" {
		t.Errorf("Expected date 2024-03-05, got %v", got.Date)
	}

	got.Subject = "Requerimiento actualizado"
	got.Number = "00101-2024"
	if err := store.UpdateDocument(ctx, got); err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	updated, err := store.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument after update failed: %v", err)
	}
	if updated.Subject != "Requerimiento actualizado" || updated.Correlative != 101 {
		t.Errorf("Update not applied: %+v", updated)
	}

	if err := store.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	gone, err := store.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument after delete failed: %v", err)
	}
	if gone != nil {
		t.Error("Expected nil after delete")
	}
}

func TestListDocumentsOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range []model.DocumentRecord{
		{Kind: model.KindOficio, Direction: model.DirectionReceived, Number: "00050-2023"},
		{Kind: model.KindOficio, Direction: model.DirectionReceived, Number: "00200-2024"},
		{Kind: model.KindOficio, Direction: model.DirectionReceived, Number: "00100-2024"},
		{Kind: model.KindOficio, Direction: model.DirectionReceived}, // no number
	} {
		doc := d
		if err := store.CreateDocument(ctx, &doc); err != nil {
			t.Fatalf("CreateDocument failed: %v", err)
		}
	}

	docs, total, err := store.ListDocuments(ctx, DocumentFilter{
		Kind:      model.KindOficio,
		Direction: model.DirectionReceived,
		SortBy:    "numero",
		Page:      1,
		PageSize:  10,
	})
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if total != 4 {
		t.Errorf("Expected total 4, got %d", total)
	}
	wantOrder := []string{"00200-2024", "00100-2024", "00050-2023", ""}
	for i, want := range wantOrder {
		if docs[i].Number != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, docs[i].Number)
		}
	}
}

func TestListDocumentsSearchAndPaging(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		doc := model.DocumentRecord{
			Kind:      model.KindCarta,
			Direction: model.DirectionSent,
			Subject:   "mantenimiento preventivo",
		}
		if err := store.CreateDocument(ctx, &doc); err != nil {
			t.Fatalf("CreateDocument failed: %v", err)
		}
	}
	other := model.DocumentRecord{Kind: model.KindCarta, Direction: model.DirectionSent, Subject: "otro asunto"}
	if err := store.CreateDocument(ctx, &other); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	docs, total, err := store.ListDocuments(ctx, DocumentFilter{
		Search: "mantenimiento", Page: 3, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if total != 25 {
		t.Errorf("Expected total 25, got %d", total)
	}
	if len(docs) != 5 {
		t.Errorf("Expected 5 documents on the last page, got %d", len(docs))
	}
}

func TestDocumentNumberExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &model.DocumentRecord{
		Kind: model.KindOficio, Direction: model.DirectionReceived, Number: "OF-00100-2024",
	}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	exists, err := store.DocumentNumberExists(ctx, "of-00100-2024")
	if err != nil {
		t.Fatalf("DocumentNumberExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected case-insensitive match")
	}

	exists, err = store.DocumentNumberExists(ctx, "OF-99999-2024")
	if err != nil {
		t.Fatalf("DocumentNumberExists failed: %v", err)
	}
	if exists {
		t.Error("Expected no match for unknown number")
	}
}

func TestRepliesAndNumbers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent := &model.DocumentRecord{
		Kind: model.KindOficio, Direction: model.DirectionReceived, Number: "00123-2024",
	}
	if err := store.CreateDocument(ctx, parent); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	reply := &model.DocumentRecord{
		Kind: model.KindCarta, Direction: model.DirectionSent,
		Number: "00010-2024", ParentID: &parent.ID,
	}
	if err := store.CreateDocument(ctx, reply); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	replies, err := store.ListReplies(ctx, parent.ID)
	if err != nil {
		t.Fatalf("ListReplies failed: %v", err)
	}
	if len(replies) != 1 || replies[0].ID != reply.ID {
		t.Errorf("Unexpected replies: %+v", replies)
	}

	numbers, err := store.DocumentNumbers(ctx)
	if err != nil {
		t.Fatalf("DocumentNumbers failed: %v", err)
	}
	if numbers[parent.ID] != "00123-2024" {
		t.Errorf("Expected parent number in lookup, got %q", numbers[parent.ID])
	}

	// Deleting the parent clears the reply's reference instead of
	// cascading into it.
	if err := store.DeleteDocument(ctx, parent.ID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	orphan, err := store.GetDocument(ctx, reply.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if orphan == nil {
		t.Fatal("Expected reply to survive parent deletion")
	}
	if orphan.ParentID != nil {
		t.Errorf("Expected cleared parent reference, got %v", *orphan.ParentID)
	}
}

func TestContractCRUDWithSites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	contract := &model.ContractRecord{
		Number:           "CONT-001-2024",
		Date:             testDate(2024, time.January, 10),
		ContractType:     model.ContractMaintenance,
		CounterpartyName: "ACME SAC",
		TermDays:         30,
		Sites: []model.ContractSite{
			{SiteName: "Comisaría A", Amount: 100.00},
			{SiteName: "Comisaría B", Amount: 50.00},
		},
	}
	if err := store.CreateContract(ctx, contract); err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}

	got, err := store.GetContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("GetContract failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected contract, got nil")
	}
	if len(got.Sites) != 2 || got.Sites[0].SiteName != "Comisaría A" {
		t.Errorf("Unexpected sites: %+v", got.Sites)
	}
	if total, ok := got.TotalAmount(); !ok || total != 150.00 {
		t.Errorf("Expected total 150.00, got %v (%v)", total, ok)
	}

	// Updating replaces the site list wholesale.
	got.Sites = []model.ContractSite{{SiteName: "Comisaría C", Amount: 75.00}}
	if err := store.UpdateContract(ctx, got); err != nil {
		t.Fatalf("UpdateContract failed: %v", err)
	}
	updated, err := store.GetContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("GetContract after update failed: %v", err)
	}
	if len(updated.Sites) != 1 || updated.Sites[0].SiteName != "Comisaría C" {
		t.Errorf("Expected replaced sites, got %+v", updated.Sites)
	}

	if err := store.DeleteContract(ctx, contract.ID); err != nil {
		t.Fatalf("DeleteContract failed: %v", err)
	}
	gone, err := store.GetContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("GetContract after delete failed: %v", err)
	}
	if gone != nil {
		t.Error("Expected nil after delete")
	}
}

func TestListContractsByType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, c := range []model.ContractRecord{
		{ContractType: model.ContractEquipment, Number: "EQ-1", Quantity: 2, UnitPrice: 10},
		{ContractType: model.ContractMaintenance, Number: "MA-1"},
	} {
		contract := c
		if err := store.CreateContract(ctx, &contract); err != nil {
			t.Fatalf("CreateContract failed: %v", err)
		}
	}

	contracts, total, err := store.ListContracts(ctx, ContractFilter{
		ContractType: model.ContractEquipment, Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("ListContracts failed: %v", err)
	}
	if total != 1 || len(contracts) != 1 || contracts[0].Number != "EQ-1" {
		t.Errorf("Unexpected listing: total=%d contracts=%+v", total, contracts)
	}
}

func TestAttachments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &model.DocumentRecord{Kind: model.KindOficio, Direction: model.DirectionReceived}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	att := &model.Attachment{Name: "anexo.pdf", LocalFile: "documents/1/anexo.pdf"}
	if err := store.AddDocumentAttachment(ctx, doc.ID, att); err != nil {
		t.Fatalf("AddDocumentAttachment failed: %v", err)
	}
	if att.ID == 0 {
		t.Fatal("Expected generated attachment id")
	}

	got, err := store.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "anexo.pdf" {
		t.Errorf("Unexpected attachments: %+v", got.Attachments)
	}

	if err := store.DeleteAttachment(ctx, att.ID); err != nil {
		t.Fatalf("DeleteAttachment failed: %v", err)
	}
	gone, err := store.GetAttachment(ctx, att.ID)
	if err != nil {
		t.Fatalf("GetAttachment failed: %v", err)
	}
	if gone != nil {
		t.Error("Expected nil after delete")
	}
}

func TestSeedUsersAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []config.SeedUser{
		{Username: "erivadeneira", Password: "secret", Name: "Elisa", Admin: true},
	}
	if err := store.SeedUsers(ctx, seed); err != nil {
		t.Fatalf("SeedUsers failed: %v", err)
	}
	// Seeding again must not duplicate or re-hash.
	if err := store.SeedUsers(ctx, seed); err != nil {
		t.Fatalf("SeedUsers second run failed: %v", err)
	}

	user, err := store.GetUserByUsername(ctx, "erivadeneira")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if user == nil {
		t.Fatal("Expected seeded user")
	}
	if !user.Admin {
		t.Error("Expected admin flag")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")); err != nil {
		t.Errorf("Stored hash does not match password: %v", err)
	}

	missing, err := store.GetUserByUsername(ctx, "nadie")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown user")
	}
}
