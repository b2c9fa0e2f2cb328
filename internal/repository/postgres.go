package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/mmeshcher/bookheaven/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	maxRetries     = 3
	retryBaseDelay = 100 * time.Millisecond
)

const bookColumns = `id, url, title, author, price, description, language, image, created_at, updated_at`

const orderSelect = `SELECT o.id, o.user_id, o.book_id, o.status, o.checkout_key, o.created_at, o.updated_at,
		b.id, COALESCE(b.url, ''), COALESCE(b.title, ''), COALESCE(b.author, ''), COALESCE(b.price, 0),
		COALESCE(b.description, ''), COALESCE(b.language, ''), COALESCE(b.image, ''), b.created_at, b.updated_at
	 FROM orders o
	 LEFT JOIN books b ON b.id = o.book_id`

const userSelect = `SELECT u.id, u.username, u.email, u.password_hash, u.address, u.role, u.avatar, u.created_at, u.updated_at,
		ARRAY(SELECT f.book_id FROM favourites f WHERE f.user_id = u.id ORDER BY f.added_at, f.seq),
		ARRAY(SELECT c.book_id FROM cart_items c WHERE c.user_id = u.id ORDER BY c.added_at, c.seq),
		ARRAY(SELECT o.id FROM orders o WHERE o.user_id = u.id ORDER BY o.created_at, o.seq)
	 FROM users u`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool      *pgxpool.Pool
	retryBase time.Duration
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool, retryBase: retryBaseDelay}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет fn при конфликтах сериализации, взаимоблокировках и обрывах соединения.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(r.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && isRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}

func pgCode(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// mapRefError переводит нарушение внешнего ключа в доменную ошибку.
func mapRefError(err error) error {
	pgErr, ok := pgCode(err)
	if !ok || pgErr.Code != pgerrcode.ForeignKeyViolation {
		return nil
	}
	if strings.HasSuffix(pgErr.ConstraintName, "book_id_fkey") {
		return ErrBookNotFound
	}
	return ErrUserNotFound
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateUser создаёт нового пользователя.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *model.User) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, address, role, avatar)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, u.Username, u.Email, u.PasswordHash, u.Address, string(u.Role), u.Avatar,
	)
	if err != nil {
		if pgErr, ok := pgCode(err); ok && pgErr.Code == pgerrcode.UniqueViolation {
			if pgErr.ConstraintName == "users_email_key" {
				return "", fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
			}
			return "", fmt.Errorf("%w: %s", ErrUsernameTaken, u.Username)
		}
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Address, &role, &u.Avatar,
		&u.CreatedAt, &u.UpdatedAt, &u.Favourites, &u.Cart, &u.Orders)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

func (r *PostgresRepository) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, userSelect+" WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, "u.id = $1", id)
}

// GetUserByUsername возвращает пользователя по логину.
func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, "u.username = $1", username)
}

func (r *PostgresRepository) updateUserField(ctx context.Context, column, id string, value any) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET `+column+` = $2, updated_at = now() WHERE id = $1`,
		id, value,
	)
	if err != nil {
		if pgErr, ok := pgCode(err); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %v", ErrEmailTaken, value)
		}
		return fmt.Errorf("update user %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateUserAddress обновляет адрес доставки пользователя.
func (r *PostgresRepository) UpdateUserAddress(ctx context.Context, id, address string) error {
	return r.updateUserField(ctx, "address", id, address)
}

// UpdateUserEmail обновляет адрес электронной почты, если он не занят другим пользователем.
func (r *PostgresRepository) UpdateUserEmail(ctx context.Context, id, email string) error {
	return r.updateUserField(ctx, "email", id, email)
}

// UpdateUserPassword сохраняет новый хеш пароля.
func (r *PostgresRepository) UpdateUserPassword(ctx context.Context, id string, hash []byte) error {
	return r.updateUserField(ctx, "password_hash", id, hash)
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var (
		b     model.Book
		cents int64
	)
	err := row.Scan(&b.ID, &b.URL, &b.Title, &b.Author, &cents, &b.Description, &b.Language, &b.Image,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Price = model.PriceFromCents(cents)
	return &b, nil
}

func collectBooks(rows pgx.Rows) ([]model.Book, error) {
	defer rows.Close()

	res := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		res = append(res, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return res, nil
}

// CreateBook добавляет книгу в каталог.
func (r *PostgresRepository) CreateBook(ctx context.Context, b *model.Book) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO books (id, url, title, author, price, description, language, image)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, b.URL, b.Title, b.Author, b.PriceCents(), b.Description, b.Language, b.Image,
	)
	if err != nil {
		return "", fmt.Errorf("create book: %w", err)
	}
	return id, nil
}

// UpdateBook обновляет карточку книги.
func (r *PostgresRepository) UpdateBook(ctx context.Context, b *model.Book) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE books
		 SET url = $2, title = $3, author = $4, price = $5, description = $6, language = $7, image = $8,
		     updated_at = now()
		 WHERE id = $1`,
		b.ID, b.URL, b.Title, b.Author, b.PriceCents(), b.Description, b.Language, b.Image,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

// DeleteBook удаляет книгу из каталога. Корзины и избранное очищаются каскадно, заказы сохраняются.
func (r *PostgresRepository) DeleteBook(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}

// GetBook возвращает книгу по идентификатору.
func (r *PostgresRepository) GetBook(ctx context.Context, id string) (*model.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// ListBooks возвращает книги, начиная с самых новых. limit <= 0 означает все книги.
func (r *PostgresRepository) ListBooks(ctx context.Context, limit int) ([]model.Book, error) {
	if limit < 0 {
		limit = 0
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookColumns+`
		 FROM books
		 ORDER BY created_at DESC, seq DESC
		 LIMIT NULLIF($1::int, 0)`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select books: %w", err)
	}
	return collectBooks(rows)
}

func (r *PostgresRepository) addRef(ctx context.Context, table, userID, bookID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO `+table+` (user_id, book_id) VALUES ($1, $2) ON CONFLICT (user_id, book_id) DO NOTHING`,
		userID, bookID,
	)
	if err != nil {
		if refErr := mapRefError(err); refErr != nil {
			return false, refErr
		}
		return false, fmt.Errorf("insert into %s: %w", table, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) removeRef(ctx context.Context, table, userID, bookID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM `+table+` WHERE user_id = $1 AND book_id = $2`,
		userID, bookID,
	)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) refBooks(ctx context.Context, table, userID string) ([]model.Book, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT b.id, b.url, b.title, b.author, b.price, b.description, b.language, b.image, b.created_at, b.updated_at
		 FROM `+table+` t
		 JOIN books b ON b.id = t.book_id
		 WHERE t.user_id = $1
		 ORDER BY t.added_at, t.seq`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}

	books, err := collectBooks(rows)
	if err != nil {
		return nil, err
	}

	if len(books) == 0 {
		if err := r.ensureUser(ctx, userID); err != nil {
			return nil, err
		}
	}
	return books, nil
}

func (r *PostgresRepository) ensureUser(ctx context.Context, userID string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

// AddToCart добавляет книгу в корзину. Возвращает false, если книга уже была в корзине.
func (r *PostgresRepository) AddToCart(ctx context.Context, userID, bookID string) (bool, error) {
	return r.addRef(ctx, "cart_items", userID, bookID)
}

// RemoveFromCart удаляет книгу из корзины. Возвращает false, если книги в корзине не было.
func (r *PostgresRepository) RemoveFromCart(ctx context.Context, userID, bookID string) (bool, error) {
	return r.removeRef(ctx, "cart_items", userID, bookID)
}

// GetCartBooks возвращает книги корзины в порядке добавления.
func (r *PostgresRepository) GetCartBooks(ctx context.Context, userID string) ([]model.Book, error) {
	return r.refBooks(ctx, "cart_items", userID)
}

// AddFavourite добавляет книгу в избранное. Возвращает false, если книга уже была в избранном.
func (r *PostgresRepository) AddFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	return r.addRef(ctx, "favourites", userID, bookID)
}

// RemoveFavourite удаляет книгу из избранного.
func (r *PostgresRepository) RemoveFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	return r.removeRef(ctx, "favourites", userID, bookID)
}

// GetFavouriteBooks возвращает избранные книги в порядке добавления.
func (r *PostgresRepository) GetFavouriteBooks(ctx context.Context, userID string) ([]model.Book, error) {
	return r.refBooks(ctx, "favourites", userID)
}

func queryOrders(ctx context.Context, q querier, tail string, args ...any) ([]model.Order, error) {
	rows, err := q.Query(ctx, orderSelect+" "+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	res := make([]model.Order, 0)
	for rows.Next() {
		var (
			o             model.Order
			status        string
			bookID        *string
			book          model.Book
			cents         int64
			bookCreatedAt *time.Time
			bookUpdatedAt *time.Time
		)
		err := rows.Scan(&o.ID, &o.UserID, &o.BookID, &status, &o.CheckoutKey, &o.CreatedAt, &o.UpdatedAt,
			&bookID, &book.URL, &book.Title, &book.Author, &cents, &book.Description, &book.Language, &book.Image,
			&bookCreatedAt, &bookUpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		o.Status = model.OrderStatus(status)
		if bookID != nil {
			book.ID = *bookID
			book.Price = model.PriceFromCents(cents)
			if bookCreatedAt != nil {
				book.CreatedAt = *bookCreatedAt
			}
			if bookUpdatedAt != nil {
				book.UpdatedAt = *bookUpdatedAt
			}
			o.Book = &book
		}
		res = append(res, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// PlaceOrder в одной транзакции создаёт по заказу на каждую книгу и убирает купленные книги из корзины.
// Строка пользователя блокируется, чтобы параллельные оформления с одним ключом не создали дубликаты.
func (r *PostgresRepository) PlaceOrder(ctx context.Context, userID, checkoutKey string, bookIDs []string) ([]model.Order, bool, error) {
	var (
		orders   []model.Order
		replayed bool
	)
	err := r.withRetry(ctx, func(ctx context.Context) error {
		var err error
		orders, replayed, err = r.placeOrderTx(ctx, userID, checkoutKey, bookIDs)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return orders, replayed, nil
}

func (r *PostgresRepository) placeOrderTx(ctx context.Context, userID, checkoutKey string, bookIDs []string) ([]model.Order, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var dummy int
	err = tx.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&dummy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, fmt.Errorf("lock user for update: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO checkouts (key, user_id) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`,
		checkoutKey, userID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert checkout: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var owner string
		if err := tx.QueryRow(ctx, `SELECT user_id FROM checkouts WHERE key = $1`, checkoutKey).Scan(&owner); err != nil {
			return nil, false, fmt.Errorf("select checkout: %w", err)
		}
		if owner != userID {
			return nil, false, ErrCheckoutKeyConflict
		}

		orders, err := queryOrders(ctx, tx, `WHERE o.checkout_key = $1 ORDER BY o.created_at, o.seq`, checkoutKey)
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, false, fmt.Errorf("commit tx: %w", err)
		}
		return orders, true, nil
	}

	if err := lockBooks(ctx, tx, bookIDs); err != nil {
		return nil, false, err
	}

	orders := make([]model.Order, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		o := model.Order{
			ID:          uuid.NewString(),
			UserID:      userID,
			BookID:      bookID,
			Status:      model.OrderStatusPlaced,
			CheckoutKey: checkoutKey,
		}
		err := tx.QueryRow(ctx,
			`INSERT INTO orders (id, user_id, book_id, status, checkout_key)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING created_at, updated_at`,
			o.ID, userID, bookID, string(o.Status), checkoutKey,
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, false, fmt.Errorf("insert order: %w", err)
		}
		orders = append(orders, o)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND book_id = ANY($2)`,
		userID, bookIDs,
	); err != nil {
		return nil, false, fmt.Errorf("clear cart: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET updated_at = now() WHERE id = $1`, userID); err != nil {
		return nil, false, fmt.Errorf("touch user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit tx: %w", err)
	}

	return orders, false, nil
}

// lockBooks проверяет, что все книги существуют, и блокирует их удаление до конца транзакции.
func lockBooks(ctx context.Context, q querier, bookIDs []string) error {
	rows, err := q.Query(ctx, `SELECT id FROM books WHERE id = ANY($1) FOR SHARE`, bookIDs)
	if err != nil {
		return fmt.Errorf("lock books: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("lock books: %w", err)
	}

	if missing := missingIDs(bookIDs, found); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrBookNotFound, strings.Join(missing, ", "))
	}
	return nil
}

// missingIDs возвращает идентификаторы из want, которых нет в found.
func missingIDs(want, found []string) []string {
	seen := make(map[string]struct{}, len(found))
	for _, id := range found {
		seen[id] = struct{}{}
	}

	var missing []string
	for _, id := range want {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// GetOrdersByUser возвращает заказы пользователя, начиная с самых новых.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := queryOrders(ctx, r.pool,
		`WHERE o.user_id = $1 ORDER BY o.created_at DESC, o.seq DESC`, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		if err := r.ensureUser(ctx, userID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// GetAllOrders возвращает все заказы с книгами и покупателями, начиная с самых новых.
func (r *PostgresRepository) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := queryOrders(ctx, r.pool, `ORDER BY o.created_at DESC, o.seq DESC`)
	if err != nil {
		return nil, err
	}

	users := make(map[string]*model.User)
	for i := range orders {
		u, ok := users[orders[i].UserID]
		if !ok {
			u, err = r.GetUserByID(ctx, orders[i].UserID)
			if err != nil && !errors.Is(err, ErrUserNotFound) {
				return nil, err
			}
			if u != nil {
				u.PasswordHash = nil
			}
			users[orders[i].UserID] = u
		}
		orders[i].User = u
	}

	return orders, nil
}

// GetOrder возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	orders, err := queryOrders(ctx, r.pool, `WHERE o.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return &orders[0], nil
}

// UpdateOrderStatus меняет статус заказа, если текущий статус равен from.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus) error {
	return r.withRetry(ctx, func(ctx context.Context) error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE orders SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
			id, string(from), string(to),
		)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return nil
		}

		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check order: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrStatusConflict
	})
}
