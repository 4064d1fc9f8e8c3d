package services_test

import (
	"context"
	"testing"

	"github.com/localnerve/agrilearn/internal/logger"
	"github.com/localnerve/agrilearn/internal/models"
	"github.com/localnerve/agrilearn/internal/services"
	"github.com/localnerve/agrilearn/internal/testutil"
	"github.com/localnerve/agrilearn/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterAndLogin(t *testing.T) {
	db := testutil.NewDB(t)
	ids := services.NewIdentityGenerator(db, 100, logger.Nop()).WithSeed(1)
	ctx := context.Background()

	in := services.RegisterInput{
		FullName:    " Aline Uwase ",
		PhoneNumber: "+250788123456",
		Password:    "Harvest#2026",
	}
	profile, err := services.Register(ctx, db, ids, bcrypt.MinCost, in)
	if err != nil {
		t.Fatal(err)
	}
	if profile.FullName != "Aline Uwase" || profile.UserType != models.UserTypeBuyer || profile.RoleName != models.RoleUser {
		t.Errorf("unexpected profile %+v", profile)
	}
	if profile.AnonymousName == "" || profile.AnonymousAvatar == "" {
		t.Error("registration must assign an anonymous identity")
	}
	if profile.Password == in.Password {
		t.Error("password stored in clear")
	}

	if _, err := services.Register(ctx, db, ids, bcrypt.MinCost, in); !types.IsKind(err, types.KindConflict) {
		t.Errorf("duplicate phone: got %v", err)
	}

	sameName := in
	sameName.PhoneNumber = "0788000111"
	if _, err := services.Register(ctx, db, ids, bcrypt.MinCost, sameName); !types.IsKind(err, types.KindConflict) {
		t.Errorf("duplicate full name: got %v", err)
	}

	investor := services.RegisterInput{FullName: "Grace Investor", PhoneNumber: "0722000111", Password: "Harvest#2026", UserType: "Investor"}
	p, err := services.Register(ctx, db, ids, bcrypt.MinCost, investor)
	if err != nil {
		t.Fatal(err)
	}
	if p.UserType != models.UserTypeInvestor {
		t.Errorf("user type = %s", p.UserType)
	}

	invalid := []services.RegisterInput{
		{FullName: "Al", PhoneNumber: "0788999999", Password: "Harvest#2026"},
		{FullName: "Jean Bosco", PhoneNumber: "12345", Password: "Harvest#2026"},
		{FullName: "Jean Bosco", PhoneNumber: "0788999999", Password: "harvest2026"},
		{FullName: "Jean Bosco", PhoneNumber: "0788999999", Password: "Harvest#2026", UserType: "admin"},
	}
	for _, in := range invalid {
		if _, err := services.Register(ctx, db, ids, bcrypt.MinCost, in); !types.IsKind(err, types.KindValidationFailed) {
			t.Errorf("%+v: got %v", in, err)
		}
	}

	if _, err := services.Login(db, services.LoginInput{PhoneNumber: "+250788123456", Password: "Wrong#2026"}); !types.IsKind(err, types.KindUnauthorized) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := services.Login(db, services.LoginInput{PhoneNumber: "0788777666", Password: "Harvest#2026"}); !types.IsKind(err, types.KindUnauthorized) {
		t.Errorf("unknown phone: got %v", err)
	}
	got, err := services.Login(db, services.LoginInput{PhoneNumber: "+250788123456", Password: "Harvest#2026"})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != profile.ID || got.RoleName != models.RoleUser {
		t.Errorf("login profile %+v", got)
	}
}

func TestRoles(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	farmer := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)

	in := services.RoleInput{Name: "Extension Officer", Description: "Field advisors"}
	if _, err := services.CreateRole(db, learnerActor(farmer), in); !types.IsKind(err, types.KindForbidden) {
		t.Errorf("non-admin: got %v", err)
	}
	if _, err := services.CreateRole(db, adminActor(admin), in); err != nil {
		t.Fatal(err)
	}
	if _, err := services.CreateRole(db, adminActor(admin), in); !types.IsKind(err, types.KindConflict) {
		t.Errorf("duplicate role: got %v", err)
	}

	roles, err := services.ListRoles(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 3 || roles[0].Name != models.RoleAdmin {
		t.Errorf("roles %+v", roles)
	}
}

func TestListUsersAndInvestors(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedAdmin(t, db, "Admin Instructor")
	testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	testutil.SeedUser(t, db, "Zawadi Investor", models.UserTypeInvestor)
	testutil.SeedUser(t, db, "Grace Investor", models.UserTypeInvestor)

	if _, err := services.ListUsers(db, services.Actor{UserID: admin.ID, Role: models.RoleUser}); !types.IsKind(err, types.KindForbidden) {
		t.Errorf("non-admin: got %v", err)
	}
	users, err := services.ListUsers(db, adminActor(admin))
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	for _, u := range users {
		if u.ID == admin.ID || u.RoleName != models.RoleUser {
			t.Errorf("unexpected user %+v", u)
		}
	}

	investors, err := services.ListInvestors(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(investors) != 2 || investors[0].FullName != "Grace Investor" {
		t.Errorf("investors %+v", investors)
	}
}

func TestMarketplace(t *testing.T) {
	db := testutil.NewDB(t)
	farmer := testutil.SeedUser(t, db, "Eric Farmer", models.UserTypeFarmer)
	buyer := testutil.SeedUser(t, db, "Olive Buyer", models.UserTypeBuyer)

	in := services.ProductInput{Name: "Avocados", Price: decimal.RequireFromString("1200.50"), Unit: "kg", Quantity: 30}
	if _, err := services.CreateProduct(db, learnerActor(buyer), in); !types.IsKind(err, types.KindForbidden) {
		t.Errorf("buyer listing: got %v", err)
	}

	free := in
	free.Price = decimal.Zero
	if _, err := services.CreateProduct(db, learnerActor(farmer), free); !types.IsKind(err, types.KindValidationFailed) {
		t.Errorf("zero price: got %v", err)
	}

	for _, name := range []string{"Avocados", "Beans", "Cassava"} {
		p := in
		p.Name = name
		if _, err := services.CreateProduct(db, learnerActor(farmer), p); err != nil {
			t.Fatal(err)
		}
	}

	page, err := services.ListProducts(db, services.PageRequest{Page: 1, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 3 || len(page.Products) != 2 || !page.HasNextPage {
		t.Errorf("page %+v", page.PageInfo)
	}

	mine, err := services.ListMyProducts(db, learnerActor(farmer))
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 3 {
		t.Errorf("expected 3 listings, got %d", len(mine))
	}
	none, err := services.ListMyProducts(db, learnerActor(buyer))
	if err != nil || len(none) != 0 {
		t.Errorf("buyer listings %v %v", none, err)
	}
}
