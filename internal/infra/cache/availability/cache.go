package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

const (
	keyPrefix     = "availability:"
	versionPrefix = "availability:version:"
)

var (
	// ErrCacheRead ошибка чтения из redis
	ErrCacheRead = errors.New("availability.cache: read failed")

	// ErrCacheWrite ошибка записи или инвалидации в redis
	ErrCacheWrite = errors.New("availability.cache: write failed")

	errVersionChanged = errors.New("availability.cache: version changed")
)

// Cache кэш дневной занятости слотов в redis.
// У каждой даты есть счётчик версий: инвалидация увеличивает его,
// а запись, прочитанная при старой версии, отбрасывается.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New создает кэш поверх redis клиента
func New(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key ключ записи для даты
func Key(date time.Time) string {
	return keyPrefix + domain.NormalizeDate(date).Format(domain.DateFormat)
}

// VersionKey ключ счётчика версий для даты
func VersionKey(date time.Time) string {
	return versionPrefix + domain.NormalizeDate(date).Format(domain.DateFormat)
}

func readVersion(ctx context.Context, client redis.Cmdable, date time.Time) (int64, error) {
	version, err := client.Get(ctx, VersionKey(date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

type cachedSlot struct {
	Time     string `json:"time"`
	Occupied bool   `json:"occupied"`
}

type cachedDay struct {
	Version  int64        `json:"version"`
	Date     string       `json:"date"`
	Slots    []cachedSlot `json:"slots"`
	Total    int          `json:"total"`
	Occupied int          `json:"occupied"`
	State    string       `json:"state"`
}

func toCached(day domain.DayAvailability, version int64) cachedDay {
	slots := make([]cachedSlot, 0, len(day.Slots))
	for _, s := range day.Slots {
		slots = append(slots, cachedSlot{Time: s.Time.String(), Occupied: s.Occupied})
	}
	return cachedDay{
		Version:  version,
		Date:     day.Date.Format(domain.DateFormat),
		Slots:    slots,
		Total:    day.Total,
		Occupied: day.Occupied,
		State:    string(day.State),
	}
}

func (c cachedDay) toDomain() (*domain.DayAvailability, error) {
	date, err := time.Parse(domain.DateFormat, c.Date)
	if err != nil {
		return nil, err
	}
	slots := make([]domain.SlotState, 0, len(c.Slots))
	for _, s := range c.Slots {
		slots = append(slots, domain.SlotState{Time: types.TimeString(s.Time), Occupied: s.Occupied})
	}
	return &domain.DayAvailability{
		Date:     date,
		Slots:    slots,
		Total:    c.Total,
		Occupied: c.Occupied,
		State:    domain.DayState(c.State),
	}, nil
}

// Get возвращает закэшированную занятость и текущую версию даты.
// Промах (nil без ошибки) возвращается и для записи, сделанной при устаревшей версии.
// Версию нужно передать в Set при заполнении кэша.
func (c *Cache) Get(ctx context.Context, date time.Time) (*domain.DayAvailability, int64, error) {
	version, err := readVersion(ctx, c.client, date)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: get %s: %v", ErrCacheRead, VersionKey(date), err)
	}

	data, err := c.client.Get(ctx, Key(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, nil
	}
	if err != nil {
		return nil, version, fmt.Errorf("%w: get %s: %v", ErrCacheRead, Key(date), err)
	}

	var cached cachedDay
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, version, fmt.Errorf("%w: decode %s: %v", ErrCacheRead, Key(date), err)
	}
	if cached.Version != version {
		return nil, version, nil
	}

	day, err := cached.toDomain()
	if err != nil {
		return nil, version, fmt.Errorf("%w: decode %s: %v", ErrCacheRead, Key(date), err)
	}

	return day, version, nil
}

// Set сохраняет занятость дня с TTL, если версия даты всё ещё равна version.
// Если дату успели инвалидировать, запись молча пропускается.
func (c *Cache) Set(ctx context.Context, day domain.DayAvailability, version int64) error {
	data, err := json.Marshal(toCached(day, version))
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrCacheWrite, err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, day.Date)
		if err != nil {
			return err
		}
		if current != version {
			return errVersionChanged
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, Key(day.Date), data, c.ttl)
			return nil
		})
		return err
	}, VersionKey(day.Date))

	if errors.Is(err, errVersionChanged) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrCacheWrite, Key(day.Date), err)
	}
	return nil
}

// Invalidate увеличивает версии и удаляет записи для всех переданных дат
func (c *Cache) Invalidate(ctx context.Context, dates ...time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(dates))
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		k := Key(d)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)

		if err := c.client.Incr(ctx, VersionKey(d)).Err(); err != nil {
			return fmt.Errorf("%w: incr %s: %v", ErrCacheWrite, VersionKey(d), err)
		}
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: del %v: %v", ErrCacheWrite, keys, err)
	}
	return nil
}

// Noop кэш, который ничего не хранит (кэш выключен)
type Noop struct{}

func (Noop) Get(context.Context, time.Time) (*domain.DayAvailability, int64, error) {
	return nil, 0, nil
}

func (Noop) Set(context.Context, domain.DayAvailability, int64) error { return nil }

func (Noop) Invalidate(context.Context, ...time.Time) error { return nil }
