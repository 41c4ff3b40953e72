package status

import (
	"errors"
	"sort"
	"testing"
	"time"

	"servis-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore: testler için bellek içi Store
type fakeStore struct {
	vehicles map[uint]*models.Vehicle
	records  map[uint][]models.ServiceRecord
	readErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		vehicles: make(map[uint]*models.Vehicle),
		records:  make(map[uint][]models.ServiceRecord),
	}
}

func (f *fakeStore) addVehicle(id uint, st models.VehicleStatus) {
	f.vehicles[id] = &models.Vehicle{ID: id, Status: st}
}

func (f *fakeStore) addRecord(vehicleID uint, st models.RecordStatus, serviceDate time.Time, dur *int) {
	f.records[vehicleID] = append(f.records[vehicleID], models.ServiceRecord{
		VehicleID:                vehicleID,
		RecordStatus:             st,
		ServiceDate:              serviceDate,
		EstimatedDurationMinutes: dur,
	})
}

func (f *fakeStore) RecordsByVehicle(vehicleID uint) ([]models.ServiceRecord, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	records := append([]models.ServiceRecord(nil), f.records[vehicleID]...)
	sort.Slice(records, func(i, j int) bool {
		return records[i].ServiceDate.After(records[j].ServiceDate)
	})
	return records, nil
}

func (f *fakeStore) VehiclesByStatus(st models.VehicleStatus, excludeID uint) ([]models.Vehicle, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []models.Vehicle
	for _, v := range f.vehicles {
		if v.ID != excludeID && v.Status == st {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeStore) AllVehicleIDs() ([]uint, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var ids []uint
	for id := range f.vehicles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeStore) UpdateVehicleStatus(vehicleID uint, st models.VehicleStatus, eta *time.Time) error {
	v, ok := f.vehicles[vehicleID]
	if !ok {
		return errors.New("araç yok")
	}
	v.Status = st
	v.EstimatedDeliveryDate = eta
	return nil
}

func (f *fakeStore) Transaction(fn func(Store) error) error {
	return fn(f)
}

func testManager(store *fakeStore, now time.Time) *Manager {
	m := NewManager(store)
	m.now = func() time.Time { return now }
	return m
}

var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func TestCalculateQueueingRequiresPeerInProgress(t *testing.T) {
	store := newFakeStore()
	store.addVehicle(1, models.VehicleStatusIdle)
	store.addRecord(1, models.RecordStatusDetected, testNow, nil)

	m := testManager(store, testNow)

	// İşlemde başka araç yokken: yok
	st, eta, err := m.Calculate(1)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleStatusIdle, st)
	assert.Nil(t, eta)

	// İşlemde başka bir araç varsa: sirada
	store.addVehicle(2, models.VehicleStatusInProgress)
	st, _, err = m.Calculate(1)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleStatusQueued, st)
}

func TestCalculateSurfacesReadError(t *testing.T) {
	store := newFakeStore()
	store.addVehicle(1, models.VehicleStatusIdle)
	store.readErr = errors.New("bağlantı koptu")

	m := testManager(store, testNow)

	// Okuma hatası yok'a çevrilmez, açıkça döner
	_, _, err := m.Calculate(1)
	require.Error(t, err)
}

func TestHandleRecordStatusChangeCascade(t *testing.T) {
	store := newFakeStore()
	// A: sadece tespit kaydı olan beklemedeki araç
	store.addVehicle(1, models.VehicleStatusIdle)
	store.addRecord(1, models.RecordStatusDetected, testNow, nil)
	// B: devam'a geçen araç
	store.addVehicle(2, models.VehicleStatusIdle)
	store.addRecord(2, models.RecordStatusInProgress, testNow, minutes(90))
	// C: hiç kaydı olmayan beklemedeki araç, sıraya girmemeli
	store.addVehicle(3, models.VehicleStatusIdle)

	m := testManager(store, testNow)
	require.NoError(t, m.HandleRecordStatusChange(2, models.RecordStatusInProgress, minutes(90)))

	assert.Equal(t, models.VehicleStatusInProgress, store.vehicles[2].Status)
	require.NotNil(t, store.vehicles[2].EstimatedDeliveryDate)
	assert.Equal(t, testNow.Add(90*time.Minute), *store.vehicles[2].EstimatedDeliveryDate)

	assert.Equal(t, models.VehicleStatusQueued, store.vehicles[1].Status)
	assert.Equal(t, models.VehicleStatusIdle, store.vehicles[3].Status)
}

func TestHandleRecordStatusChangeCompleted(t *testing.T) {
	store := newFakeStore()
	store.addVehicle(1, models.VehicleStatusInProgress)
	store.addRecord(1, models.RecordStatusCompleted, testNow, nil)

	m := testManager(store, testNow)
	require.NoError(t, m.HandleRecordStatusChange(1, models.RecordStatusCompleted, nil))

	assert.Equal(t, models.VehicleStatusCompleted, store.vehicles[1].Status)
	assert.Nil(t, store.vehicles[1].EstimatedDeliveryDate)
}

func TestHandleRecordStatusChangeDetectedIsNoop(t *testing.T) {
	store := newFakeStore()
	store.addVehicle(1, models.VehicleStatusIdle)
	store.addRecord(1, models.RecordStatusDetected, testNow, nil)

	m := testManager(store, testNow)
	require.NoError(t, m.HandleRecordStatusChange(1, models.RecordStatusDetected, nil))

	assert.Equal(t, models.VehicleStatusIdle, store.vehicles[1].Status)
}

func TestRecalculateAllScenario(t *testing.T) {
	store := newFakeStore()
	// V1: tek tamamlanmış kayıt, V2: tek tespit kaydı, işlemde araç yok
	store.addVehicle(1, models.VehicleStatusIdle)
	store.addRecord(1, models.RecordStatusCompleted, testNow, nil)
	store.addVehicle(2, models.VehicleStatusQueued) // eski cascade'den kalmış sirada
	store.addRecord(2, models.RecordStatusDetected, testNow, nil)

	m := testManager(store, testNow)
	require.NoError(t, m.RecalculateAll())

	assert.Equal(t, models.VehicleStatusCompleted, store.vehicles[1].Status)
	assert.Equal(t, models.VehicleStatusIdle, store.vehicles[2].Status)
}

func TestRecalculateAllUsesGlobalInProgressFlag(t *testing.T) {
	store := newFakeStore()
	store.addVehicle(1, models.VehicleStatusIdle)
	store.addRecord(1, models.RecordStatusInProgress, testNow, nil)
	store.addVehicle(2, models.VehicleStatusIdle)
	store.addRecord(2, models.RecordStatusDetected, testNow, nil)

	m := testManager(store, testNow)
	require.NoError(t, m.RecalculateAll())

	assert.Equal(t, models.VehicleStatusInProgress, store.vehicles[1].Status)
	assert.Equal(t, models.VehicleStatusQueued, store.vehicles[2].Status)
}

func TestRecalculateAllIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addVehicle(1, models.VehicleStatusIdle)
	store.addRecord(1, models.RecordStatusInProgress, testNow, minutes(60))
	store.addVehicle(2, models.VehicleStatusIdle)
	store.addRecord(2, models.RecordStatusDetected, testNow, nil)
	store.addVehicle(3, models.VehicleStatusInProgress) // kaydı yok, yok'a dönmeli

	m := testManager(store, testNow)
	require.NoError(t, m.RecalculateAll())

	snapshot := make(map[uint]models.Vehicle)
	for id, v := range store.vehicles {
		snapshot[id] = *v
	}

	// Araya kayıt değişikliği girmeden ikinci çalıştırma aynı sonucu vermeli
	require.NoError(t, m.RecalculateAll())
	for id, v := range store.vehicles {
		assert.Equal(t, snapshot[id].Status, v.Status, "araç %d", id)
		assert.Equal(t, snapshot[id].EstimatedDeliveryDate, v.EstimatedDeliveryDate, "araç %d", id)
	}

	assert.Equal(t, models.VehicleStatusIdle, store.vehicles[3].Status)
}
