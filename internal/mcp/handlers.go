package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Cycrus/COGNA/internal/backup"
	"github.com/Cycrus/COGNA/internal/config"
	"github.com/Cycrus/COGNA/internal/neuron"
	"github.com/Cycrus/COGNA/internal/pathutil"
	"github.com/Cycrus/COGNA/internal/ratelimit"
	"github.com/Cycrus/COGNA/internal/sanitize"
	"github.com/Cycrus/COGNA/internal/store"
	"github.com/Cycrus/COGNA/internal/visualization"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const networkURIPrefix = "cogna://networks/"

// registerTools registers all cogna MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_neuron",
		Description: "Add, remove or show a neuron. Removing a neuron also removes every connection that touches it.",
	}, s.handleNeuron)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_connect",
		Description: "Create a connection from a neuron to another neuron ('to') or to an existing connection ('ref', presynaptic). Duplicate edges are rejected.",
	}, s.handleConnect)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_disconnect",
		Description: "Remove a connection from a neuron to a neuron ('to') or to a connection ('ref'). Presynaptic connections that modulated it are removed too.",
	}, s.handleDisconnect)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_check",
		Description: "Report whether creating the given edge would be a duplicate",
	}, s.handleCheck)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_weight",
		Description: "Read the base, short or long weight of the connection between two neurons",
	}, s.handleWeight)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_transmit",
		Description: "Apply a connection's activation function (sigmoid, linear or relu) to an input signal",
	}, s.handleTransmit)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_graph",
		Description: "Render a network in DOT (Graphviz) or JSON format",
	}, s.handleGraph)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_list",
		Description: "List stored networks with neuron and connection counts",
	}, s.handleList)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_validate",
		Description: "Check a stored network for dangling targets, duplicate edges and back-reference mismatches",
	}, s.handleValidate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_backup",
		Description: "Write stored networks to a backup file in the backup directory, then apply the retention policy",
	}, s.handleBackup)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "cogna_restore",
		Description: "Restore networks from a backup file in the backup directory. Mode 'merge' skips networks that already exist; 'replace' overwrites them.",
	}, s.handleRestore)
}

// registerResources exposes every stored network as a JSON resource.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&sdk.ResourceTemplate{
		URITemplate: networkURIPrefix + "{name}",
		Name:        "cogna-network",
		Description: "JSON rendering of a stored network: neurons, connections and weights.",
		MIMEType:    "application/json",
	}, s.handleNetworkResource)
}

func (s *Server) handleNetworkResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	name, ok := strings.CutPrefix(uri, networkURIPrefix)
	if !ok || name == "" {
		return nil, fmt.Errorf("invalid URI format: %s", uri)
	}

	var graph visualization.Graph
	err := s.withNetwork(ctx, name, false, func(net *neuron.Network) error {
		graph = visualization.RenderJSON(net)
		return nil
	})
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding network %s: %w", name, err)
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{URI: uri, MIMEType: "application/json", Text: string(data)},
		},
	}, nil
}

func (s *Server) networkName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return s.defaultNetwork
}

// withNetwork loads the named network, runs fn and, for mutations, saves
// the result. A mutation on an unknown network starts from an empty one;
// reads of an unknown network fail with store.ErrNotFound.
func (s *Server) withNetwork(ctx context.Context, name string, mutate bool, fn func(*neuron.Network) error) error {
	if err := sanitize.ValidateNetworkName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		net *neuron.Network
		err error
	)
	if mutate {
		net, err = store.LoadOrCreate(ctx, s.store, name)
	} else {
		net, err = store.LoadNetwork(ctx, s.store, name)
	}
	if err != nil {
		return err
	}
	net.SetLogger(s.logger.With("network", name), s.events)

	if err := fn(net); err != nil {
		return err
	}
	if !mutate {
		return nil
	}
	if err := store.SaveNetwork(ctx, s.store, name, net); err != nil {
		return fmt.Errorf("failed to save network %s: %w", name, err)
	}
	return nil
}

// edge is a parsed EdgeInput. Exactly one of to and ref is set.
type edge struct {
	from neuron.NeuronID
	to   *neuron.NeuronID
	ref  *neuron.ConnectionRef
}

func parseEdge(in EdgeInput) (edge, error) {
	if in.From == "" {
		return edge{}, fmt.Errorf("'from' parameter is required")
	}
	from, err := neuron.ParseNeuronID(in.From)
	if err != nil {
		return edge{}, err
	}
	switch {
	case in.To != "" && in.Ref != "":
		return edge{}, fmt.Errorf("set either 'to' or 'ref', not both")
	case in.To != "":
		to, err := neuron.ParseNeuronID(in.To)
		if err != nil {
			return edge{}, err
		}
		return edge{from: from, to: &to}, nil
	case in.Ref != "":
		ref, err := neuron.ParseConnectionRef(in.Ref)
		if err != nil {
			return edge{}, err
		}
		return edge{from: from, ref: &ref}, nil
	default:
		return edge{}, fmt.Errorf("one of 'to' or 'ref' is required")
	}
}

// connectionOptions applies the configured defaults, then the caller's overrides.
func (s *Server) connectionOptions(args ConnectInput) ([]neuron.ConnectionOption, error) {
	return s.defaults.Override(config.ConnectionOverrides{
		ActivationType: args.ActivationType,
		Function:       args.Function,
		Learning:       args.Learning,
		Transmitter:    args.Transmitter,
	}).ConnectionOptions()
}

func describeConnection(c *neuron.Connection) ConnectionDetail {
	return ConnectionDetail{
		Ref:            c.Ref().String(),
		Target:         c.Target().String(),
		Kind:           c.Target().Kind().String(),
		ActivationType: c.ActivationType.String(),
		Function:       c.Function.String(),
		Learning:       c.Learning.String(),
		Transmitter:    c.Transmitter.String(),
		BaseWeight:     c.BaseWeight,
		ShortWeight:    c.ShortWeight,
		LongWeight:     c.LongWeight,
	}
}

func describeNeuron(n *neuron.Neuron) *NeuronDetail {
	d := &NeuronDetail{
		ID:          n.String(),
		Threshold:   n.Threshold,
		Activation:  n.Activation,
		Active:      n.IsActive(),
		Previous:    []string{},
		Connections: []ConnectionDetail{},
	}
	for _, id := range n.Previous() {
		d.Previous = append(d.Previous, id.String())
	}
	for _, c := range n.Connections() {
		d.Connections = append(d.Connections, describeConnection(c))
	}
	return d
}

func (s *Server) handleNeuron(ctx context.Context, req *sdk.CallToolRequest, args NeuronInput) (_ *sdk.CallToolResult, _ NeuronOutput, retErr error) {
	start := time.Now()
	network := s.networkName(args.Network)
	defer func() {
		s.auditTool("cogna_neuron", network, start, retErr, map[string]any{
			"action": args.Action, "id": args.ID, "threshold": args.Threshold,
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_neuron", network); err != nil {
		return nil, NeuronOutput{}, err
	}

	out := NeuronOutput{Network: network, Action: args.Action}
	switch args.Action {
	case "add":
		threshold := s.defaults.DefaultThreshold
		if args.Threshold != nil {
			threshold = *args.Threshold
		}
		err := s.withNetwork(ctx, network, true, func(net *neuron.Network) error {
			out.Neuron = describeNeuron(net.AddNeuron(threshold))
			return nil
		})
		if err != nil {
			return nil, NeuronOutput{}, err
		}
		out.Message = fmt.Sprintf("Added %s (threshold %g)", out.Neuron.ID, threshold)

	case "remove", "show":
		if args.ID == "" {
			return nil, NeuronOutput{}, fmt.Errorf("'id' parameter is required for %s", args.Action)
		}
		id, err := neuron.ParseNeuronID(args.ID)
		if err != nil {
			return nil, NeuronOutput{}, err
		}
		mutate := args.Action == "remove"
		err = s.withNetwork(ctx, network, mutate, func(net *neuron.Network) error {
			if mutate {
				return net.RemoveNeuron(id)
			}
			n, ok := net.Neuron(id)
			if !ok {
				return fmt.Errorf("%w: %s", neuron.ErrNeuronNotFound, id)
			}
			out.Neuron = describeNeuron(n)
			return nil
		})
		if err != nil {
			return nil, NeuronOutput{}, err
		}
		if mutate {
			out.Message = fmt.Sprintf("Removed %s and its connections", id)
		} else {
			out.Message = fmt.Sprintf("%s has %d outgoing connections", id, len(out.Neuron.Connections))
		}

	default:
		return nil, NeuronOutput{}, fmt.Errorf("invalid action: %q (must be one of: add, remove, show)", args.Action)
	}
	return nil, out, nil
}

func (s *Server) handleConnect(ctx context.Context, req *sdk.CallToolRequest, args ConnectInput) (_ *sdk.CallToolResult, _ ConnectOutput, retErr error) {
	start := time.Now()
	network := s.networkName(args.Network)
	params := map[string]any{
		"from": args.From, "to": args.To, "ref": args.Ref, "weight": args.Weight,
		"activation_type": args.ActivationType, "function": args.Function,
		"learning": args.Learning, "transmitter": args.Transmitter,
	}
	defer func() { s.auditTool("cogna_connect", network, start, retErr, params) }()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_connect", network); err != nil {
		return nil, ConnectOutput{}, err
	}
	e, err := parseEdge(args.EdgeInput)
	if err != nil {
		return nil, ConnectOutput{}, err
	}
	opts, err := s.connectionOptions(args)
	if err != nil {
		return nil, ConnectOutput{}, err
	}

	weight := s.defaults.DefaultWeight
	if args.Weight != nil {
		weight = *args.Weight
	}

	out := ConnectOutput{Network: network}
	err = s.withNetwork(ctx, network, true, func(net *neuron.Network) error {
		var c *neuron.Connection
		var err error
		if e.to != nil {
			c, err = net.AddNeuronConnection(e.from, *e.to, weight, opts...)
		} else {
			c, err = net.AddSynapticConnection(e.from, *e.ref, weight, opts...)
		}
		if err != nil {
			return err
		}
		out.Connection = describeConnection(c)
		return nil
	})
	if err != nil {
		return nil, ConnectOutput{}, err
	}
	out.Message = fmt.Sprintf("Created %s: %s -> %s (%s, weight %g)",
		out.Connection.Ref, e.from, out.Connection.Target, out.Connection.Function, weight)
	return nil, out, nil
}

func (s *Server) handleDisconnect(ctx context.Context, req *sdk.CallToolRequest, args EdgeInput) (_ *sdk.CallToolResult, _ DisconnectOutput, retErr error) {
	start := time.Now()
	network := s.networkName(args.Network)
	defer func() {
		s.auditTool("cogna_disconnect", network, start, retErr, map[string]any{"from": args.From, "to": args.To, "ref": args.Ref})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_disconnect", network); err != nil {
		return nil, DisconnectOutput{}, err
	}
	e, err := parseEdge(args)
	if err != nil {
		return nil, DisconnectOutput{}, err
	}

	out := DisconnectOutput{Network: network}
	err = s.withNetwork(ctx, network, true, func(net *neuron.Network) error {
		if e.to != nil {
			out.Removed = fmt.Sprintf("%s -> %s", e.from, *e.to)
			return net.DelConnection(e.from, *e.to)
		}
		out.Removed = fmt.Sprintf("%s -> %s", e.from, *e.ref)
		return net.DelSynapticConnection(e.from, *e.ref)
	})
	if err != nil {
		return nil, DisconnectOutput{}, err
	}
	out.Message = "Removed " + out.Removed
	return nil, out, nil
}

func (s *Server) handleCheck(ctx context.Context, req *sdk.CallToolRequest, args EdgeInput) (_ *sdk.CallToolResult, _ CheckOutput, retErr error) {
	start := time.Now()
	network := s.networkName(args.Network)
	defer func() {
		s.auditTool("cogna_check", network, start, retErr, map[string]any{"from": args.From, "to": args.To, "ref": args.Ref})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_check", network); err != nil {
		return nil, CheckOutput{}, err
	}
	e, err := parseEdge(args)
	if err != nil {
		return nil, CheckOutput{}, err
	}

	out := CheckOutput{Network: network}
	err = s.withNetwork(ctx, network, false, func(net *neuron.Network) error {
		if e.to != nil {
			if _, ok := net.Neuron(e.from); !ok {
				return fmt.Errorf("%w: %s", neuron.ErrNeuronNotFound, e.from)
			}
			out.Exists = net.CheckNeuronConnection(e.from, *e.to)
			return nil
		}
		exists, err := net.CheckSynapticConnection(e.from, *e.ref)
		out.Exists = exists
		return err
	})
	if err != nil {
		return nil, CheckOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleWeight(ctx context.Context, req *sdk.CallToolRequest, args WeightInput) (_ *sdk.CallToolResult, _ WeightOutput, retErr error) {
	start := time.Now()
	network := s.networkName(args.Network)
	defer func() {
		s.auditTool("cogna_weight", network, start, retErr, map[string]any{"from": args.From, "to": args.To, "tier": args.Tier})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_weight", network); err != nil {
		return nil, WeightOutput{}, err
	}
	if args.From == "" || args.To == "" {
		return nil, WeightOutput{}, fmt.Errorf("'from' and 'to' parameters are required")
	}
	from, err := neuron.ParseNeuronID(args.From)
	if err != nil {
		return nil, WeightOutput{}, err
	}
	to, err := neuron.ParseNeuronID(args.To)
	if err != nil {
		return nil, WeightOutput{}, err
	}
	tier, err := neuron.ParseWeightTier(args.Tier)
	if err != nil {
		return nil, WeightOutput{}, err
	}

	out := WeightOutput{Network: network, Tier: tier.String()}
	err = s.withNetwork(ctx, network, false, func(net *neuron.Network) error {
		w, err := net.GetWeight(from, to, tier)
		out.Weight = w
		return err
	})
	if err != nil {
		return nil, WeightOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleTransmit(ctx context.Context, req *sdk.CallToolRequest, args TransmitInput) (_ *sdk.CallToolResult, _ TransmitOutput, retErr error) {
	start := time.Now()
	network := s.networkName(args.Network)
	defer func() {
		s.auditTool("cogna_transmit", network, start, retErr, map[string]any{"ref": args.Ref, "input": args.Input})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_transmit", network); err != nil {
		return nil, TransmitOutput{}, err
	}
	if args.Ref == "" {
		return nil, TransmitOutput{}, fmt.Errorf("'ref' parameter is required")
	}
	ref, err := neuron.ParseConnectionRef(args.Ref)
	if err != nil {
		return nil, TransmitOutput{}, err
	}

	out := TransmitOutput{Network: network, Ref: ref.String()}
	err = s.withNetwork(ctx, network, false, func(net *neuron.Network) error {
		c, ok := net.Connection(ref)
		if !ok {
			return fmt.Errorf("%w: %s", neuron.ErrEdgeNotFound, ref)
		}
		out.Function = c.Function.String()
		v, err := net.Transmit(c, args.Input)
		out.Output = v
		return err
	})
	if err != nil {
		return nil, TransmitOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleGraph(ctx context.Context, req *sdk.CallToolRequest, args GraphInput) (_ *sdk.CallToolResult, _ GraphOutput, retErr error) {
	start := time.Now()
	network := s.networkName(args.Network)
	defer func() {
		s.auditTool("cogna_graph", network, start, retErr, map[string]any{"format": args.Format})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_graph", network); err != nil {
		return nil, GraphOutput{}, err
	}
	format := visualization.Format(args.Format)
	if format == "" {
		format = visualization.FormatJSON
	}
	if format != visualization.FormatDOT && format != visualization.FormatJSON {
		return nil, GraphOutput{}, fmt.Errorf("unsupported format %q (use 'dot' or 'json')", args.Format)
	}

	out := GraphOutput{Network: network, Format: string(format)}
	err := s.withNetwork(ctx, network, false, func(net *neuron.Network) error {
		if format == visualization.FormatDOT {
			out.DOT = visualization.RenderDOT(net, network)
			return nil
		}
		g := visualization.RenderJSON(net)
		out.Graph = &g
		return nil
	})
	if err != nil {
		return nil, GraphOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleList(ctx context.Context, req *sdk.CallToolRequest, args ListInput) (_ *sdk.CallToolResult, _ ListOutput, retErr error) {
	start := time.Now()
	defer func() { s.auditTool("cogna_list", "", start, retErr, nil) }()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_list", ""); err != nil {
		return nil, ListOutput{}, err
	}

	s.mu.Lock()
	infos, err := s.store.List(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("failed to list networks: %w", err)
	}

	out := ListOutput{Networks: make([]NetworkSummary, 0, len(infos))}
	for _, info := range infos {
		out.Networks = append(out.Networks, NetworkSummary{
			Name:        info.Name,
			Neurons:     info.NeuronCount,
			Connections: info.ConnectionCount,
			SavedAt:     info.SavedAt,
		})
	}
	out.Count = len(out.Networks)
	return nil, out, nil
}

func (s *Server) handleValidate(ctx context.Context, req *sdk.CallToolRequest, args ValidateInput) (_ *sdk.CallToolResult, _ ValidateOutput, retErr error) {
	start := time.Now()
	network := s.networkName(args.Network)
	defer func() { s.auditTool("cogna_validate", network, start, retErr, nil) }()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_validate", network); err != nil {
		return nil, ValidateOutput{}, err
	}

	s.mu.Lock()
	issues, err := store.Validate(ctx, s.store, network)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ValidateOutput{}, err
		}
		return nil, ValidateOutput{}, fmt.Errorf("failed to validate network %s: %w", network, err)
	}

	out := ValidateOutput{Network: network, Valid: len(issues) == 0}
	for _, issue := range issues {
		out.Issues = append(out.Issues, issue.String())
	}
	return nil, out, nil
}

var errBackupsDisabled = errors.New("backups are not enabled on this server")

func (s *Server) handleBackup(ctx context.Context, req *sdk.CallToolRequest, args BackupInput) (_ *sdk.CallToolResult, _ BackupOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("cogna_backup", "", start, retErr, map[string]any{
			"output_path": pathutil.RedactPath(args.OutputPath),
			"networks":    strings.Join(args.Networks, ","),
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_backup", ""); err != nil {
		return nil, BackupOutput{}, err
	}
	if s.backupDir == "" {
		return nil, BackupOutput{}, errBackupsDisabled
	}

	compress := s.backupCompress
	if args.Compress != nil {
		compress = *args.Compress
	}
	outputPath := args.OutputPath
	if outputPath == "" {
		outputPath = backup.GenerateBackupPath(s.backupDir, compress)
	} else if err := pathutil.ValidatePath(outputPath, s.allowedDirs); err != nil {
		return nil, BackupOutput{}, fmt.Errorf("backup path rejected: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0700); err != nil {
		return nil, BackupOutput{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	s.mu.Lock()
	result, err := backup.Backup(ctx, s.store, outputPath, backup.Options{Names: args.Networks, Compress: compress})
	s.mu.Unlock()
	if err != nil {
		return nil, BackupOutput{}, fmt.Errorf("backup failed: %w", err)
	}

	out := BackupOutput{
		Path:            outputPath,
		NetworkCount:    len(result.Networks),
		NeuronCount:     result.NeuronCount(),
		ConnectionCount: result.ConnectionCount(),
		Version:         result.Version,
		Compressed:      result.Version == backup.FormatV2,
	}
	if s.retention != nil {
		pruned, err := backup.ApplyRetention(filepath.Dir(outputPath), s.retention)
		if err != nil {
			s.logger.Warn("failed to apply backup retention", "error", err)
		}
		out.Pruned = pruned
	}
	if info, err := os.Stat(outputPath); err == nil {
		out.SizeBytes = info.Size()
	}
	out.Message = fmt.Sprintf("Backup created: %d networks, %d neurons, %d connections -> %s",
		out.NetworkCount, out.NeuronCount, out.ConnectionCount, outputPath)
	return nil, out, nil
}

func (s *Server) handleRestore(ctx context.Context, req *sdk.CallToolRequest, args RestoreInput) (_ *sdk.CallToolResult, _ RestoreOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("cogna_restore", "", start, retErr, map[string]any{
			"input_path": pathutil.RedactPath(args.InputPath),
			"mode":       args.Mode,
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "cogna_restore", ""); err != nil {
		return nil, RestoreOutput{}, err
	}
	if s.backupDir == "" {
		return nil, RestoreOutput{}, errBackupsDisabled
	}
	if args.InputPath == "" {
		return nil, RestoreOutput{}, fmt.Errorf("'input_path' parameter is required")
	}
	if err := pathutil.ValidatePath(args.InputPath, s.allowedDirs); err != nil {
		return nil, RestoreOutput{}, fmt.Errorf("restore path rejected: %w", err)
	}

	mode := backup.RestoreMerge
	switch args.Mode {
	case "", string(backup.RestoreMerge):
	case string(backup.RestoreReplace):
		mode = backup.RestoreReplace
	default:
		return nil, RestoreOutput{}, fmt.Errorf("invalid mode %q (use 'merge' or 'replace')", args.Mode)
	}

	s.mu.Lock()
	result, err := backup.Restore(ctx, s.store, args.InputPath, mode)
	s.mu.Unlock()
	if err != nil {
		return nil, RestoreOutput{}, fmt.Errorf("restore failed: %w", err)
	}
	s.events.Log(map[string]any{"event": "restore", "mode": string(mode), "networks": result.NetworksRestored})

	return nil, RestoreOutput{
		NetworksRestored:    result.NetworksRestored,
		NetworksSkipped:     result.NetworksSkipped,
		NeuronsRestored:     result.NeuronsRestored,
		ConnectionsRestored: result.ConnectionsRestored,
		Message: fmt.Sprintf("Restore complete: %d networks restored (%d neurons, %d connections), %d skipped",
			result.NetworksRestored, result.NeuronsRestored, result.ConnectionsRestored, result.NetworksSkipped),
	}, nil
}
