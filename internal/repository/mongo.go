package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmeshcher/bookheaven/internal/model"
)

const (
	defaultMongoDatabase = "bookheaven"

	usersCollection     = "users"
	booksCollection     = "books"
	ordersCollection    = "orders"
	checkoutsCollection = "checkouts"

	usernameIndex = "users_username_unique"
	emailIndex    = "users_email_unique"
)

type userDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Username  string               `bson:"username"`
	Email     string               `bson:"email"`
	Password  []byte               `bson:"password"`
	Address   string               `bson:"address"`
	Role      string               `bson:"role"`
	Avatar    string               `bson:"avatar"`
	Favourite []primitive.ObjectID `bson:"favourite"`
	Cart      []primitive.ObjectID `bson:"cart"`
	Orders    []primitive.ObjectID `bson:"orders"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func (d *userDoc) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		Address:      d.Address,
		Role:         model.Role(d.Role),
		Avatar:       d.Avatar,
		Favourites:   hexIDs(d.Favourite),
		Cart:         hexIDs(d.Cart),
		Orders:       hexIDs(d.Orders),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type bookDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	URL         string             `bson:"url"`
	Title       string             `bson:"title"`
	Author      string             `bson:"author"`
	PriceCents  int64              `bson:"priceCents"`
	LegacyPrice *float64           `bson:"price,omitempty"`
	Description string             `bson:"description"`
	Language    string             `bson:"language"`
	Image       string             `bson:"image"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// price — денежное поле документов, созданных до перехода на priceCents.
func (d *bookDoc) price() float64 {
	if d.PriceCents == 0 && d.LegacyPrice != nil {
		return *d.LegacyPrice
	}
	return model.PriceFromCents(d.PriceCents)
}

func (d *bookDoc) toModel() model.Book {
	return model.Book{
		ID:          d.ID.Hex(),
		URL:         d.URL,
		Title:       d.Title,
		Author:      d.Author,
		Price:       d.price(),
		Description: d.Description,
		Language:    d.Language,
		Image:       d.Image,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type orderDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	User        primitive.ObjectID `bson:"user"`
	Book        primitive.ObjectID `bson:"book"`
	Status      string             `bson:"status"`
	CheckoutKey string             `bson:"checkoutKey"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *orderDoc) toModel() model.Order {
	return model.Order{
		ID:          d.ID.Hex(),
		UserID:      d.User.Hex(),
		BookID:      d.Book.Hex(),
		Status:      model.OrderStatus(d.Status),
		CheckoutKey: d.CheckoutKey,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type checkoutDoc struct {
	Key       string               `bson:"_id"`
	User      primitive.ObjectID   `bson:"user"`
	Orders    []primitive.ObjectID `bson:"orders"`
	CreatedAt time.Time            `bson:"createdAt"`
}

func hexIDs(ids []primitive.ObjectID) []string {
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		res = append(res, id.Hex())
	}
	return res
}

// objectIDs пропускает некорректные идентификаторы: такие документы заведомо не существуют.
func objectIDs(ids []string) []primitive.ObjectID {
	res := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			res = append(res, oid)
		}
	}
	return res
}

// MongoRepository предоставляет доступ к хранилищу данных в MongoDB.
// Оформление заказа использует транзакции, поэтому сервер должен быть запущен как replica set.
type MongoRepository struct {
	client    *mongo.Client
	users     *mongo.Collection
	books     *mongo.Collection
	orders    *mongo.Collection
	checkouts *mongo.Collection
	now       func() time.Time
}

// NewMongoRepository подключается к MongoDB и создаёт необходимые индексы.
func NewMongoRepository(ctx context.Context, uri string) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(mongoDatabaseName(uri))
	r := &MongoRepository{
		client:    client,
		users:     db.Collection(usersCollection),
		books:     db.Collection(booksCollection),
		orders:    db.Collection(ordersCollection),
		checkouts: db.Collection(checkoutsCollection),
		now:       func() time.Time { return time.Now().UTC() },
	}

	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return r, nil
}

func mongoDatabaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultMongoDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultMongoDatabase
}

func (r *MongoRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usernameIndex)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(emailIndex)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	if _, err := r.books.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	}); err != nil {
		return fmt.Errorf("create book indexes: %w", err)
	}

	if _, err := r.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "checkoutKey", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}

	return nil
}

// Close закрывает соединение с MongoDB.
func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func duplicateUserError(err error, u *model.User) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if strings.Contains(err.Error(), emailIndex) {
		return fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
	}
	return fmt.Errorf("%w: %s", ErrUsernameTaken, u.Username)
}

// CreateUser создаёт нового пользователя.
func (r *MongoRepository) CreateUser(ctx context.Context, u *model.User) (string, error) {
	now := r.now()
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Address:   u.Address,
		Role:      string(u.Role),
		Avatar:    u.Avatar,
		Favourite: []primitive.ObjectID{},
		Cart:      []primitive.ObjectID{},
		Orders:    []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if dupErr := duplicateUserError(err, u); dupErr != nil {
			return "", dupErr
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *MongoRepository) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return doc.toModel(), nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (r *MongoRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return r.findUser(ctx, bson.M{"_id": oid})
}

// GetUserByUsername возвращает пользователя по логину.
func (r *MongoRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findUser(ctx, bson.M{"username": username})
}

func (r *MongoRepository) setUserField(ctx context.Context, id, field string, value any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}

	res, err := r.users.UpdateByID(ctx, oid, bson.M{"$set": bson.M{field: value, "updatedAt": r.now()}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrEmailTaken, value)
		}
		return fmt.Errorf("update user %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateUserAddress обновляет адрес доставки пользователя.
func (r *MongoRepository) UpdateUserAddress(ctx context.Context, id, address string) error {
	return r.setUserField(ctx, id, "address", address)
}

// UpdateUserEmail обновляет адрес электронной почты, если он не занят другим пользователем.
func (r *MongoRepository) UpdateUserEmail(ctx context.Context, id, email string) error {
	return r.setUserField(ctx, id, "email", email)
}

// UpdateUserPassword сохраняет новый хеш пароля.
func (r *MongoRepository) UpdateUserPassword(ctx context.Context, id string, hash []byte) error {
	return r.setUserField(ctx, id, "password", hash)
}

// CreateBook добавляет книгу в каталог.
func (r *MongoRepository) CreateBook(ctx context.Context, b *model.Book) (string, error) {
	now := r.now()
	doc := bookDoc{
		ID:          primitive.NewObjectID(),
		URL:         b.URL,
		Title:       b.Title,
		Author:      b.Author,
		PriceCents:  b.PriceCents(),
		Description: b.Description,
		Language:    b.Language,
		Image:       b.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.books.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("create book: %w", err)
	}
	return doc.ID.Hex(), nil
}

// UpdateBook обновляет карточку книги.
func (r *MongoRepository) UpdateBook(ctx context.Context, b *model.Book) error {
	oid, err := primitive.ObjectIDFromHex(b.ID)
	if err != nil {
		return ErrBookNotFound
	}

	res, err := r.books.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"url":         b.URL,
		"title":       b.Title,
		"author":      b.Author,
		"priceCents":  b.PriceCents(),
		"description": b.Description,
		"language":    b.Language,
		"image":       b.Image,
		"updatedAt":   r.now(),
	}, "$unset": bson.M{"price": ""}})
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrBookNotFound
	}
	return nil
}

// DeleteBook удаляет книгу из каталога и из корзин и избранного пользователей. Заказы сохраняются.
func (r *MongoRepository) DeleteBook(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrBookNotFound
	}

	res, err := r.books.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrBookNotFound
	}

	_, err = r.users.UpdateMany(ctx,
		bson.M{"$or": bson.A{bson.M{"cart": oid}, bson.M{"favourite": oid}}},
		bson.M{"$pull": bson.M{"cart": oid, "favourite": oid}},
	)
	if err != nil {
		return fmt.Errorf("detach deleted book: %w", err)
	}
	return nil
}

// GetBook возвращает книгу по идентификатору.
func (r *MongoRepository) GetBook(ctx context.Context, id string) (*model.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBookNotFound
	}

	var doc bookDoc
	if err := r.books.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	b := doc.toModel()
	return &b, nil
}

// ListBooks возвращает книги, начиная с самых новых. limit <= 0 означает все книги.
func (r *MongoRepository) ListBooks(ctx context.Context, limit int) ([]model.Book, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.books.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}

	var docs []bookDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}

	res := make([]model.Book, 0, len(docs))
	for i := range docs {
		res = append(res, docs[i].toModel())
	}
	return res, nil
}

func (r *MongoRepository) booksByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.Book, error) {
	res := make(map[primitive.ObjectID]model.Book, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	cur, err := r.books.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}

	var docs []bookDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	for i := range docs {
		res[docs[i].ID] = docs[i].toModel()
	}
	return res, nil
}

func (r *MongoRepository) addRef(ctx context.Context, field, userID, bookID string) (bool, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, ErrUserNotFound
	}
	bid, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return false, ErrBookNotFound
	}

	n, err := r.books.CountDocuments(ctx, bson.M{"_id": bid})
	if err != nil {
		return false, fmt.Errorf("check book: %w", err)
	}
	if n == 0 {
		return false, ErrBookNotFound
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": uid, field: bson.M{"$ne": bid}},
		bson.M{"$push": bson.M{field: bid}, "$set": bson.M{"updatedAt": r.now()}},
	)
	if err != nil {
		return false, fmt.Errorf("push %s: %w", field, err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	if err := r.ensureUser(ctx, uid); err != nil {
		return false, err
	}
	return false, nil
}

func (r *MongoRepository) removeRef(ctx context.Context, field, userID, bookID string) (bool, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, ErrUserNotFound
	}
	bid, err := primitive.ObjectIDFromHex(bookID)
	if err != nil {
		return false, nil
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": uid, field: bid},
		bson.M{"$pull": bson.M{field: bid}, "$set": bson.M{"updatedAt": r.now()}},
	)
	if err != nil {
		return false, fmt.Errorf("pull %s: %w", field, err)
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}

	if err := r.ensureUser(ctx, uid); err != nil {
		return false, err
	}
	return false, nil
}

func (r *MongoRepository) refBooks(ctx context.Context, userID string, refs func(d *userDoc) []primitive.ObjectID) ([]model.Book, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var doc userDoc
	if err := r.users.FindOne(ctx, bson.M{"_id": uid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ids := refs(&doc)
	books, err := r.booksByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make([]model.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := books[id]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

func (r *MongoRepository) ensureUser(ctx context.Context, uid primitive.ObjectID) error {
	n, err := r.users.CountDocuments(ctx, bson.M{"_id": uid})
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AddToCart добавляет книгу в корзину. Возвращает false, если книга уже была в корзине.
func (r *MongoRepository) AddToCart(ctx context.Context, userID, bookID string) (bool, error) {
	return r.addRef(ctx, "cart", userID, bookID)
}

// RemoveFromCart удаляет книгу из корзины. Возвращает false, если книги в корзине не было.
func (r *MongoRepository) RemoveFromCart(ctx context.Context, userID, bookID string) (bool, error) {
	return r.removeRef(ctx, "cart", userID, bookID)
}

// GetCartBooks возвращает книги корзины в порядке добавления.
func (r *MongoRepository) GetCartBooks(ctx context.Context, userID string) ([]model.Book, error) {
	return r.refBooks(ctx, userID, func(d *userDoc) []primitive.ObjectID { return d.Cart })
}

// AddFavourite добавляет книгу в избранное. Возвращает false, если книга уже была в избранном.
func (r *MongoRepository) AddFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	return r.addRef(ctx, "favourite", userID, bookID)
}

// RemoveFavourite удаляет книгу из избранного.
func (r *MongoRepository) RemoveFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	return r.removeRef(ctx, "favourite", userID, bookID)
}

// GetFavouriteBooks возвращает избранные книги в порядке добавления.
func (r *MongoRepository) GetFavouriteBooks(ctx context.Context, userID string) ([]model.Book, error) {
	return r.refBooks(ctx, userID, func(d *userDoc) []primitive.ObjectID { return d.Favourite })
}

type placeResult struct {
	orders   []model.Order
	replayed bool
}

// PlaceOrder в одной транзакции создаёт по заказу на каждую книгу, дописывает их в историю пользователя
// и убирает купленные книги из корзины.
func (r *MongoRepository) PlaceOrder(ctx context.Context, userID, checkoutKey string, bookIDs []string) ([]model.Order, bool, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false, ErrUserNotFound
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return nil, false, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	out, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return r.placeOrderTx(sc, uid, checkoutKey, bookIDs)
	})
	if err != nil {
		return nil, false, err
	}

	res := out.(placeResult)
	return res.orders, res.replayed, nil
}

func (r *MongoRepository) placeOrderTx(ctx mongo.SessionContext, uid primitive.ObjectID, checkoutKey string, bookIDs []string) (placeResult, error) {
	var existing checkoutDoc
	err := r.checkouts.FindOne(ctx, bson.M{"_id": checkoutKey}).Decode(&existing)
	switch {
	case err == nil:
		if existing.User != uid {
			return placeResult{}, ErrCheckoutKeyConflict
		}
		orders, err := r.ordersByIDs(ctx, existing.Orders)
		if err != nil {
			return placeResult{}, err
		}
		return placeResult{orders: orders, replayed: true}, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return placeResult{}, fmt.Errorf("find checkout: %w", err)
	}

	bookOIDs := objectIDs(bookIDs)
	if err := r.checkBooks(ctx, bookIDs, bookOIDs); err != nil {
		return placeResult{}, err
	}

	now := r.now()
	docs := make([]any, 0, len(bookOIDs))
	ids := make([]primitive.ObjectID, 0, len(bookOIDs))
	orders := make([]model.Order, 0, len(bookOIDs))
	for _, bid := range bookOIDs {
		doc := orderDoc{
			ID:          primitive.NewObjectID(),
			User:        uid,
			Book:        bid,
			Status:      string(model.OrderStatusPlaced),
			CheckoutKey: checkoutKey,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		docs = append(docs, doc)
		ids = append(ids, doc.ID)
		orders = append(orders, doc.toModel())
	}

	res, err := r.users.UpdateByID(ctx, uid, bson.M{
		"$push":    bson.M{"orders": bson.M{"$each": ids}},
		"$pullAll": bson.M{"cart": bookOIDs},
		"$set":     bson.M{"updatedAt": now},
	})
	if err != nil {
		return placeResult{}, fmt.Errorf("update user orders: %w", err)
	}
	if res.MatchedCount == 0 {
		return placeResult{}, ErrUserNotFound
	}

	if len(docs) > 0 {
		if _, err := r.orders.InsertMany(ctx, docs); err != nil {
			return placeResult{}, fmt.Errorf("insert orders: %w", err)
		}
	}

	if _, err := r.checkouts.InsertOne(ctx, checkoutDoc{
		Key:       checkoutKey,
		User:      uid,
		Orders:    ids,
		CreatedAt: now,
	}); err != nil {
		return placeResult{}, fmt.Errorf("insert checkout: %w", err)
	}

	return placeResult{orders: orders}, nil
}

// checkBooks внутри транзакции убеждается, что книги заказа ещё есть в каталоге.
func (r *MongoRepository) checkBooks(ctx context.Context, bookIDs []string, oids []primitive.ObjectID) error {
	cur, err := r.books.Find(ctx, bson.M{"_id": bson.M{"$in": oids}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return fmt.Errorf("find order books: %w", err)
	}

	var docs []bookDoc
	if err := cur.All(ctx, &docs); err != nil {
		return fmt.Errorf("decode order books: %w", err)
	}

	found := make([]string, 0, len(docs))
	for i := range docs {
		found = append(found, docs[i].ID.Hex())
	}

	if missing := missingIDs(bookIDs, found); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrBookNotFound, strings.Join(missing, ", "))
	}
	return nil
}

func (r *MongoRepository) ordersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Order, error) {
	cur, err := r.orders.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	byID := make(map[primitive.ObjectID]orderDoc, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	res := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			res = append(res, d.toModel())
		}
	}
	return res, nil
}

func (r *MongoRepository) findOrders(ctx context.Context, filter bson.M, withUser bool) ([]model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	bookIDs := make([]primitive.ObjectID, 0, len(docs))
	userIDs := make([]primitive.ObjectID, 0)
	for _, d := range docs {
		bookIDs = append(bookIDs, d.Book)
		userIDs = append(userIDs, d.User)
	}

	books, err := r.booksByID(ctx, bookIDs)
	if err != nil {
		return nil, err
	}

	users := make(map[primitive.ObjectID]*model.User)
	if withUser && len(userIDs) > 0 {
		cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}},
			options.Find().SetProjection(bson.M{"password": 0}))
		if err != nil {
			return nil, fmt.Errorf("find users: %w", err)
		}
		var userDocs []userDoc
		if err := cur.All(ctx, &userDocs); err != nil {
			return nil, fmt.Errorf("decode users: %w", err)
		}
		for i := range userDocs {
			users[userDocs[i].ID] = userDocs[i].toModel()
		}
	}

	res := make([]model.Order, 0, len(docs))
	for _, d := range docs {
		o := d.toModel()
		if b, ok := books[d.Book]; ok {
			o.Book = &b
		}
		if withUser {
			o.User = users[d.User]
		}
		res = append(res, o)
	}
	return res, nil
}

// GetOrdersByUser возвращает заказы пользователя, начиная с самых новых.
func (r *MongoRepository) GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if err := r.ensureUser(ctx, uid); err != nil {
		return nil, err
	}
	return r.findOrders(ctx, bson.M{"user": uid}, false)
}

// GetAllOrders возвращает все заказы с книгами и покупателями, начиная с самых новых.
func (r *MongoRepository) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return r.findOrders(ctx, bson.M{}, true)
}

// GetOrder возвращает заказ по идентификатору.
func (r *MongoRepository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	orders, err := r.findOrders(ctx, bson.M{"_id": oid}, false)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return &orders[0], nil
}

// UpdateOrderStatus меняет статус заказа, если текущий статус равен from.
func (r *MongoRepository) UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrOrderNotFound
	}

	// У старых заказов поле status может отсутствовать.
	var current any = string(from)
	if from == "" {
		current = bson.M{"$in": bson.A{"", nil}}
	}

	res, err := r.orders.UpdateOne(ctx,
		bson.M{"_id": oid, "status": current},
		bson.M{"$set": bson.M{"status": string(to), "updatedAt": r.now()}},
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.orders.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return ErrStatusConflict
}
