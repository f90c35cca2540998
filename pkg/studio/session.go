package studio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
	"github.com/shouni/gemini-studio-kit/pkg/gallery"
	"github.com/shouni/gemini-studio-kit/pkg/generator"
	"github.com/shouni/gemini-studio-kit/pkg/input"
	"github.com/shouni/gemini-studio-kit/pkg/mask"
	"github.com/shouni/gemini-studio-kit/pkg/settings"
)

// 入力スロットの名前
const (
	SlotBackground = "background"
	SlotProduct    = "product"
	SlotAnimated   = "animated"
	SlotEditBase   = "edit-base"
)

// Generator はセッションが利用する生成フローです。generator.Orchestrator がこれを満たします。
type Generator interface {
	GenerateStatic(ctx context.Context, in generator.StaticInput, progress generator.Progress) ([]domain.Result, error)
	GenerateVideo(ctx context.Context, in generator.VideoInput, progress generator.Progress) (domain.Result, error)
	Modify(ctx context.Context, in generator.ModifyInput) (domain.Result, error)
	Upscale(ctx context.Context, img domain.ImagePayload) (domain.Result, error)
}

// Session は1人の利用者の作業状態をまとめたファサードです。
// 設定の保存、入力スロット、マスク、生成フロー、ギャラリーをつなぎます。
type Session struct {
	mu    sync.Mutex
	state State

	store   *settings.Store
	gen     Generator
	auth    generator.Authorizer
	gallery *gallery.Gallery
	canvas  *mask.Canvas
	slots   map[string]*input.Slot

	primary atomic.Bool
}

// FlowOption はメインの生成の実行方法を変更します。
type FlowOption func(*flowOptions)

type flowOptions struct {
	inputs []func() error
}

// WithInputs は生成枠を確保した後、生成の直前に apply で入力を反映します。
// 別の生成が実行中なら apply は呼ばれません。apply が失敗した場合は生成せずにそのエラーを返します。
func WithInputs(apply func() error) FlowOption {
	return func(o *flowOptions) {
		o.inputs = append(o.inputs, apply)
	}
}

// NewSession は保存済みの設定を読み込んでセッションを作成します。auth は動画を使わない場合 nil を許容します。
func NewSession(ctx context.Context, store *settings.Store, gen Generator, auth generator.Authorizer) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("settings store is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	s := &Session{
		state:   InitialState(loaded),
		store:   store,
		gen:     gen,
		auth:    auth,
		gallery: gallery.New(),
		canvas:  mask.NewCanvas(),
		slots:   make(map[string]*input.Slot),
	}
	for _, name := range []string{SlotBackground, SlotProduct, SlotAnimated, SlotEditBase} {
		s.slots[name] = input.NewSlot(name)
	}
	return s, nil
}

// Busy はメインの生成が実行中かを返します。
func (s *Session) Busy() bool {
	return s.primary.Load()
}

// State は現在の状態のコピーを返します。
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Gallery は生成結果のギャラリーを返します。
func (s *Session) Gallery() *gallery.Gallery { return s.gallery }

// Canvas は部分編集用のマスクキャンバスを返します。
func (s *Session) Canvas() *mask.Canvas { return s.canvas }

// Slot は名前で入力スロットを返します。
func (s *Session) Slot(name string) (*input.Slot, error) {
	slot, ok := s.slots[name]
	if !ok {
		return nil, fmt.Errorf("unknown input slot: %q", name)
	}
	return slot, nil
}

func (s *Session) dispatch(ev Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, ev)
	return s.state
}

// UpdateSetting は1項目を保存してから状態に反映します。保存に失敗した場合は状態を変えません。
func (s *Session) UpdateSetting(field domain.Field, value string) (State, error) {
	next, err := s.store.Set(field, value)
	if err != nil {
		return s.State(), err
	}
	return s.dispatch(SettingsChanged{Settings: next}), nil
}

// ApplySettings は複数項目をまとめて保存します。
func (s *Session) ApplySettings(values map[domain.Field]string) (State, error) {
	next, err := s.store.Apply(values)
	if err != nil {
		return s.dispatch(SettingsChanged{Settings: s.store.Current()}), err
	}
	return s.dispatch(SettingsChanged{Settings: next}), nil
}

// ResetSettings は設定を既定値に戻します。
func (s *Session) ResetSettings() (State, error) {
	next, err := s.store.Reset()
	if err != nil {
		return s.State(), err
	}
	return s.dispatch(SettingsChanged{Settings: next}), nil
}

// SetMode はモードを切り替えます。新しいモードで使えないアスペクト比は寄せてから保存します。
func (s *Session) SetMode(mode domain.Mode) (State, error) {
	before := s.State().Settings.AspectRatio
	st := s.dispatch(ModeChanged{Mode: mode})
	if st.Settings.AspectRatio != before {
		if _, err := s.store.Set(domain.FieldAspectRatio, st.Settings.AspectRatio); err != nil {
			return st, err
		}
	}
	return st, nil
}

// LoadEditImage は部分編集のベース画像を読み込みます。キャンバスの以前のペイントは破棄されます。
func (s *Session) LoadEditImage(data []byte, mimeType string) error {
	if err := s.canvas.LoadBytes(data); err != nil {
		return fmt.Errorf("編集画像を読み込めませんでした: %w", err)
	}
	return s.slots[SlotEditBase].Load(data, mimeType)
}

// Authorize は動画用の資格情報を確認し、未選択なら選択を促します。
// 選択の操作が返った時点で成功とみなし、実際の検証は次の呼び出しに任せます。
func (s *Session) Authorize(ctx context.Context) error {
	if s.auth == nil {
		return fmt.Errorf("video authorization is not available")
	}
	ok, err := s.auth.HasSelectedKey(ctx)
	if err != nil {
		return fmt.Errorf("資格情報の確認に失敗しました: %w", err)
	}
	if !ok {
		if err := s.auth.OpenSelectKey(ctx); err != nil {
			return fmt.Errorf("資格情報の選択に失敗しました: %w", err)
		}
	}
	s.dispatch(VideoAuthorized{})
	return nil
}

// Generate は現在のモードに応じたメインの生成を実行します。
func (s *Session) Generate(ctx context.Context, progress generator.Progress) ([]domain.Result, error) {
	switch s.State().Mode {
	case domain.ModeAnimated:
		res, err := s.GenerateVideo(ctx, progress)
		if err != nil {
			return nil, err
		}
		return []domain.Result{res}, nil
	case domain.ModeModification:
		res, err := s.Modify(ctx)
		if err != nil {
			return nil, err
		}
		return []domain.Result{res}, nil
	default:
		return s.GenerateStatic(ctx, progress)
	}
}

// GenerateStatic は静止画を2枚生成してギャラリーを置き換えます。
func (s *Session) GenerateStatic(ctx context.Context, progress generator.Progress, opts ...FlowOption) ([]domain.Result, error) {
	var results []domain.Result
	err := s.runPrimary(ctx, opts, func(st State) error {
		var err error
		results, err = s.gen.GenerateStatic(ctx, generator.StaticInput{
			Description: st.Settings.Prompt,
			Style:       st.Settings.Style(),
			Background:  s.slots[SlotBackground].Payload(),
			Product:     s.slots[SlotProduct].Payload(),
		}, s.progress(progress))
		if err != nil {
			return err
		}
		s.gallery.Reset(results)
		return nil
	})
	return results, err
}

// GenerateVideo は動画を生成してギャラリーを置き換えます。
// 資格情報が未確認なら先に選択を促します。
func (s *Session) GenerateVideo(ctx context.Context, progress generator.Progress, opts ...FlowOption) (domain.Result, error) {
	if !s.State().VideoAuthorized && s.auth != nil {
		if err := s.Authorize(ctx); err != nil {
			slog.WarnContext(ctx, "動画用の資格情報を確認できませんでした", "error", err)
		}
	}

	var result domain.Result
	err := s.runPrimary(ctx, opts, func(st State) error {
		var err error
		result, err = s.gen.GenerateVideo(ctx, generator.VideoInput{
			Description: st.Settings.Prompt,
			Style:       st.Settings.Style(),
			Start:       s.slots[SlotAnimated].Payload(),
			Authorized:  st.VideoAuthorized,
		}, s.progress(progress))
		if err != nil {
			return err
		}
		s.gallery.Reset([]domain.Result{result})
		return nil
	})
	return result, err
}

// Modify はキャンバスのマスクで部分編集を行い、ギャラリーを置き換えます。
func (s *Session) Modify(ctx context.Context, opts ...FlowOption) (domain.Result, error) {
	var result domain.Result
	err := s.runPrimary(ctx, opts, func(st State) error {
		in := generator.ModifyInput{
			Description: st.Settings.Prompt,
			Style:       st.Settings.Style(),
			Base:        s.slots[SlotEditBase].Payload(),
		}
		if s.canvas.Loaded() {
			in.Mask = s.canvas
		}
		var err error
		result, err = s.gen.Modify(ctx, in)
		if err != nil {
			return err
		}
		s.gallery.Reset([]domain.Result{result})
		return nil
	})
	return result, err
}

// Upscale はギャラリーのアイテム1件を高解像度化します。メインの生成とは独立して実行できます。
func (s *Session) Upscale(ctx context.Context, index int) (domain.Result, error) {
	res, err := s.gallery.Upscale(ctx, s.gen, index)
	if err != nil {
		s.dispatch(PostActionFailed{Err: err})
		return domain.Result{}, err
	}
	return res, nil
}

// Download はギャラリーのアイテム1件を保存します。
func (s *Session) Download(ctx context.Context, w gallery.Writer, dir string, index int) (string, error) {
	p, err := s.gallery.Download(ctx, w, dir, index)
	if err != nil {
		s.dispatch(PostActionFailed{Err: err})
		return "", err
	}
	return p, nil
}

// runPrimary はメインの生成を1つだけ実行し、終了時に必ずビジー状態を解除します。
// 入力の反映は枠を確保してから行うので、拒否された呼び出しが実行中の入力を書き換えることはありません。
func (s *Session) runPrimary(ctx context.Context, opts []FlowOption, run func(st State) error) error {
	var o flowOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !s.primary.CompareAndSwap(false, true) {
		err := &generator.FlowError{Category: generator.CategoryValidation, Err: generator.ErrBusy}
		s.dispatch(PostActionFailed{Err: err})
		return err
	}
	defer s.primary.Store(false)

	for _, apply := range o.inputs {
		if err := apply(); err != nil {
			s.dispatch(PostActionFailed{Err: err})
			return err
		}
	}

	st := s.dispatch(GenerationStarted{})
	if err := run(st); err != nil {
		s.dispatch(GenerationFailed{Err: err})
		if generator.IsVideoAuthorizationError(err) {
			slog.WarnContext(ctx, "動画用の資格情報を再選択する必要があります")
		}
		return err
	}
	s.dispatch(GenerationSucceeded{Count: s.gallery.Len()})
	return nil
}

func (s *Session) progress(next generator.Progress) generator.Progress {
	return func(message string) {
		s.dispatch(ProgressReported{Message: message})
		if next != nil {
			next(message)
		}
	}
}
