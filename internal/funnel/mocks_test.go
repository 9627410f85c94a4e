package funnel

import (
	"context"
	"fmt"
	"time"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/internal/notify"
	"github.com/trapadl/spicymarg-funnel/pkg/config"
)

type fakeGuestRepo struct {
	byID      map[string]*domain.Guest
	byEmail   map[string]*domain.Guest
	inserted  []*domain.Guest
	insertErr error
	verifyRet *domain.Guest
	verifyErr error
	verified  []string
}

func newFakeGuestRepo(guests ...*domain.Guest) *fakeGuestRepo {
	r := &fakeGuestRepo{
		byID:    make(map[string]*domain.Guest),
		byEmail: make(map[string]*domain.Guest),
	}
	for _, g := range guests {
		r.byID[g.ID] = g
		r.byEmail[g.Email] = g
	}
	return r
}

func (r *fakeGuestRepo) Insert(ctx context.Context, email string, dob time.Time) (*domain.Guest, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	g := &domain.Guest{
		ID:          "guest-" + email,
		Email:       email,
		DateOfBirth: dob,
		Stage:       domain.StageSignedUp,
		LastStageAt: time.Now(),
		CreatedAt:   time.Now(),
	}
	r.inserted = append(r.inserted, g)
	r.byID[g.ID] = g
	r.byEmail[g.Email] = g
	return g, nil
}

func (r *fakeGuestRepo) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	return r.byID[id], nil
}

func (r *fakeGuestRepo) FindByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	return r.byEmail[email], nil
}

func (r *fakeGuestRepo) MarkVerified(ctx context.Context, id, fullName, phone string, at time.Time) (*domain.Guest, error) {
	if r.verifyErr != nil {
		return nil, r.verifyErr
	}
	r.verified = append(r.verified, id)
	return r.verifyRet, nil
}

type fakeVisitRepo struct {
	existing map[string]bool
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{existing: make(map[string]bool)}
}

func visitKey(guestID string, visitNumber int) string {
	return fmt.Sprintf("%s:%d", guestID, visitNumber)
}

func (r *fakeVisitRepo) Exists(ctx context.Context, guestID string, visitNumber int) (bool, error) {
	return r.existing[visitKey(guestID, visitNumber)], nil
}

type fakeRedemptionRepo struct {
	result *domain.RedemptionResult
	err    error
	calls  []string
}

func (r *fakeRedemptionRepo) ConfirmVisit(ctx context.Context, guestID string, visitNumber int) (*domain.RedemptionResult, error) {
	r.calls = append(r.calls, visitKey(guestID, visitNumber))
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

type fakeOTPStore struct {
	challenges map[string]*domain.OTPChallenge
	lastTTL    time.Duration
	consumed   []string
	putErr     error
}

func newFakeOTPStore() *fakeOTPStore {
	return &fakeOTPStore{challenges: make(map[string]*domain.OTPChallenge)}
}

func (s *fakeOTPStore) Put(ctx context.Context, ch *domain.OTPChallenge, ttl time.Duration) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.challenges[ch.GuestID] = ch
	s.lastTTL = ttl
	return nil
}

func (s *fakeOTPStore) Get(ctx context.Context, guestID string) (*domain.OTPChallenge, error) {
	return s.challenges[guestID], nil
}

func (s *fakeOTPStore) Consume(ctx context.Context, guestID string) error {
	delete(s.challenges, guestID)
	s.consumed = append(s.consumed, guestID)
	return nil
}

type notifierCall struct {
	method string
	guest  *domain.Guest
	post   *domain.RedemptionResult
}

type fakeNotifier struct {
	calls []notifierCall
}

func (n *fakeNotifier) GuestSignedUp(ctx context.Context, guest *domain.Guest, newSignup bool) {
	n.calls = append(n.calls, notifierCall{method: "GuestSignedUp", guest: guest})
}

func (n *fakeNotifier) VoucherClaimed(ctx context.Context, guest *domain.Guest) {
	n.calls = append(n.calls, notifierCall{method: "VoucherClaimed", guest: guest})
}

func (n *fakeNotifier) VisitRedeemed(ctx context.Context, post *domain.RedemptionResult) {
	n.calls = append(n.calls, notifierCall{method: "VisitRedeemed", post: post})
}

type publishedEvent struct {
	subject string
	data    interface{}
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	p.events = append(p.events, publishedEvent{subject: subject, data: data})
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type smsCall struct {
	phone string
	text  string
}

type fakeSMSSender struct {
	sent []smsCall
	err  error
}

func (s *fakeSMSSender) SendSMS(ctx context.Context, phone, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, smsCall{phone: phone, text: text})
	return nil
}

type upsertCall struct {
	email   string
	attrs   map[string]any
	listIDs []int64
}

type sendCall struct {
	templateID int64
	to         notify.Recipient
	params     map[string]any
}

type fakeCRM struct {
	upserts []upsertCall
	sends   []sendCall
}

func (c *fakeCRM) UpsertContact(ctx context.Context, email string, attributes map[string]any, listIDs []int64) error {
	c.upserts = append(c.upserts, upsertCall{email: email, attrs: attributes, listIDs: listIDs})
	return nil
}

func (c *fakeCRM) SendTransactional(ctx context.Context, templateID int64, to notify.Recipient, params map[string]any) error {
	c.sends = append(c.sends, sendCall{templateID: templateID, to: to, params: params})
	return nil
}

func (c *fakeCRM) SendSMS(ctx context.Context, phone, text string) error { return nil }

type serviceFixture struct {
	svc         *Service
	guests      *fakeGuestRepo
	visits      *fakeVisitRepo
	redemptions *fakeRedemptionRepo
	otps        *fakeOTPStore
	notifier    *fakeNotifier
	sms         *fakeSMSSender
	bus         *fakePublisher
}

func newFixture(guests ...*domain.Guest) *serviceFixture {
	f := &serviceFixture{
		guests:      newFakeGuestRepo(guests...),
		visits:      newFakeVisitRepo(),
		redemptions: &fakeRedemptionRepo{},
		otps:        newFakeOTPStore(),
		notifier:    &fakeNotifier{},
		sms:         &fakeSMSSender{},
		bus:         &fakePublisher{},
	}
	cfg := &config.Config{
		Funnel: config.FunnelConfig{
			OTPValidity:        10 * time.Minute,
			DefaultCountryCode: "+61",
			SMSCostPerVoucher:  0.1091,
		},
	}
	f.svc = NewService(f.guests, f.visits, f.redemptions, f.otps, f.notifier, f.sms, f.bus, cfg)
	return f
}
